package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegisterTokenMeterScenario(t *testing.T) {
	s := setupRouter(t, fakePinger{})

	w := s.do(http.MethodPost, "/register", "", map[string]string{"email": "a@b.com", "password": "secret12"})
	require.Equal(t, http.StatusCreated, w.Code)
	user := decode(t, w)
	require.NotEqual(t, "secret12", user["password"])
	require.NotContains(t, user, "password")
	require.Equal(t, "a@b.com", user["email"])

	w = s.token("a@b.com", "secret12")
	require.Equal(t, http.StatusOK, w.Code)
	tok := decode(t, w)
	require.Equal(t, "bearer", tok["token_type"])
	require.Equal(t, float64(3600), tok["expires_in"])
	token := tok["access_token"].(string)
	require.NotEmpty(t, token)

	w = s.do(http.MethodPost, "/meter", token, map[string]string{"name": "m1"})
	require.Equal(t, http.StatusCreated, w.Code)
	meter := decode(t, w)
	require.Equal(t, "m1", meter["name"])
	meterID := meter["id"].(string)

	w = s.do(http.MethodGet, "/meter/"+meterID, "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	require.Contains(t, decode(t, w), "detail")

	w = s.do(http.MethodDelete, "/meter/"+meterID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/meter/"+meterID, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Not found", decode(t, w)["detail"])
}

func TestRegisterValidation(t *testing.T) {
	s := setupRouter(t, fakePinger{})

	w := s.do(http.MethodPost, "/register", "", map[string]string{"email": "not-an-email", "password": "x"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = s.do(http.MethodPost, "/register", "", map[string]string{"email": "a@b.com"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	s.signup("a@b.com")
	w = s.do(http.MethodPost, "/register", "", map[string]string{"email": "a@b.com", "password": "other"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestTokenRejectsBadCredentialsUniformly(t *testing.T) {
	s := setupRouter(t, fakePinger{})
	s.signup("a@b.com")

	wrong := s.token("a@b.com", "nope")
	unknown := s.token("ghost@b.com", "secret12")
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, wrong.Body.String(), unknown.Body.String())

	w := s.token("", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOwnershipIsolation(t *testing.T) {
	s := setupRouter(t, fakePinger{})
	_, alice := s.signup("alice@b.com")
	bobID, bob := s.signup("bob@b.com")

	w := s.do(http.MethodPost, "/meter", alice, map[string]interface{}{"name": "water", "user_id": bobID})
	require.Equal(t, http.StatusCreated, w.Code)
	meter := decode(t, w)
	require.NotEqual(t, bobID, meter["user_id"])
	meterID := meter["id"].(string)

	w = s.do(http.MethodPost, "/reading", alice, map[string]interface{}{"meter_id": meterID, "value": 4.2})
	require.Equal(t, http.StatusCreated, w.Code)
	readingID := decode(t, w)["id"].(string)

	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/meter/"+meterID, bob, nil).Code)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/meter/"+meterID, bob, map[string]string{"name": "x"}).Code)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/meter/"+meterID+"/reading", bob, nil).Code)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/reading", bob, map[string]interface{}{"meter_id": meterID, "value": 1}).Code)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/reading/"+readingID, bob, map[string]interface{}{"value": 1}).Code)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/meter/"+meterID, bob, nil).Code)
	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/reading/"+readingID, bob, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/meter/"+meterID, alice, nil).Code)

	w = s.do(http.MethodGet, "/meter", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decodeList(t, w))
}

func TestMeterCRUDAndReadings(t *testing.T) {
	s := setupRouter(t, fakePinger{})
	_, token := s.signup("a@b.com")

	w := s.do(http.MethodPost, "/meter", token, map[string]string{"name": "m1", "description": "kitchen"})
	require.Equal(t, http.StatusCreated, w.Code)
	meterID := decode(t, w)["id"].(string)

	w = s.do(http.MethodPost, "/meter", token, map[string]string{"name": "m1"})
	require.Equal(t, http.StatusConflict, w.Code)
	w = s.do(http.MethodPost, "/meter", token, map[string]string{"description": "no name"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPut, "/meter/"+meterID, token, map[string]string{"name": "m2"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)
	require.Equal(t, "m2", updated["name"])
	require.Equal(t, "kitchen", updated["description"])

	for _, v := range []float64{1, 2.5, 0} {
		w = s.do(http.MethodPost, "/reading", token, map[string]interface{}{"meter_id": meterID, "value": v})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = s.do(http.MethodPost, "/reading", token, map[string]interface{}{"meter_id": meterID})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = s.do(http.MethodPost, "/reading", token, map[string]interface{}{"meter_id": uuid.NewString(), "value": 1})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/meter/"+meterID+"/reading?offset=1&limit=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeList(t, w)
	require.Len(t, page, 1)
	require.Equal(t, 2.5, page[0]["value"])
	require.NotContains(t, page[0], "user_id")

	w = s.do(http.MethodGet, "/meter/"+meterID+"/reading?limit=abc", token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, "/meter/"+meterID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, meterID, body["meter"].(map[string]interface{})["id"])
	require.Len(t, body["readings"], 3)

	readingID := page[0]["id"].(string)
	w = s.do(http.MethodPut, "/reading/"+readingID, token, map[string]interface{}{"value": 7.5})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 7.5, decode(t, w)["value"])

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/reading/"+readingID, token, nil).Code)
	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/reading/"+readingID, token, nil).Code)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/reading/"+readingID, token, map[string]interface{}{"value": 1}).Code)
}

func TestPathIDsMustBeUUIDs(t *testing.T) {
	s := setupRouter(t, fakePinger{})
	_, token := s.signup("a@b.com")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/meter/123"},
		{http.MethodDelete, "/meter/123"},
		{http.MethodDelete, "/reading/abc"},
		{http.MethodGet, "/user/1"},
	} {
		w := s.do(tc.method, tc.path, token, nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, tc.path)
	}
}

func TestUserEndpoints(t *testing.T) {
	s := setupRouter(t, fakePinger{})
	aliceID, alice := s.signup("alice@b.com")
	bobID, bob := s.signup("bob@b.com")

	w := s.do(http.MethodGet, "/user/"+aliceID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, decode(t, w), "password")
	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/user/"+bobID, alice, nil).Code)

	w = s.do(http.MethodPut, "/user/"+aliceID, alice, map[string]string{"email": "bob@b.com"})
	require.Equal(t, http.StatusConflict, w.Code)
	w = s.do(http.MethodPut, "/user/"+aliceID, alice, map[string]string{"password": "changed99"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.StatusUnauthorized, s.token("alice@b.com", "secret12").Code)
	require.Equal(t, http.StatusOK, s.token("alice@b.com", "changed99").Code)

	w = s.do(http.MethodPost, "/meter", bob, map[string]string{"name": "m1"})
	require.Equal(t, http.StatusCreated, w.Code)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/user/"+aliceID, bob, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/user/"+aliceID, alice, nil).Code)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/user/"+bobID, bob, nil).Code)
	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/meter", bob, nil).Code)
	require.Equal(t, http.StatusUnauthorized, s.token("bob@b.com", "secret12").Code)
}

func TestOldTokenCannotReachNewOwnerOfEmail(t *testing.T) {
	s := setupRouter(t, fakePinger{})
	aliceID, alice := s.signup("alice@b.com")

	w := s.do(http.MethodGet, "/meter", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/user/"+aliceID, alice, map[string]string{"email": "alice2@b.com"})
	require.Equal(t, http.StatusOK, w.Code)

	bobID, bob := s.signup("alice@b.com")
	w = s.do(http.MethodPost, "/meter", bob, map[string]string{"name": "bob-meter"})
	require.Equal(t, http.StatusCreated, w.Code)

	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/meter", alice, nil).Code)
	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/user/"+bobID, alice, nil).Code)
	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodDelete, "/user/"+bobID, alice, nil).Code)

	w = s.do(http.MethodGet, "/meter", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	meters := decodeList(t, w)
	require.Len(t, meters, 1)
	require.Equal(t, "bob-meter", meters[0]["name"])

	aliceAgain := s.token("alice2@b.com", "secret12")
	require.Equal(t, http.StatusOK, aliceAgain.Code)
	fresh := decode(t, aliceAgain)["access_token"].(string)
	w = s.do(http.MethodGet, "/meter", fresh, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decodeList(t, w))
}

func TestMeterGetPagesReadings(t *testing.T) {
	s := setupRouter(t, fakePinger{})
	_, token := s.signup("a@b.com")
	w := s.do(http.MethodPost, "/meter", token, map[string]string{"name": "m1"})
	require.Equal(t, http.StatusCreated, w.Code)
	meterID := decode(t, w)["id"].(string)
	for _, v := range []float64{1, 2, 3} {
		w = s.do(http.MethodPost, "/reading", token, map[string]interface{}{"meter_id": meterID, "value": v})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = s.do(http.MethodGet, "/meter/"+meterID+"?offset=1&limit=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	readings := decode(t, w)["readings"].([]interface{})
	require.Len(t, readings, 1)
	require.Equal(t, float64(2), readings[0].(map[string]interface{})["value"])

	w = s.do(http.MethodGet, "/meter/"+meterID+"?offset=x", token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHealthz(t *testing.T) {
	w := setupRouter(t, fakePinger{}).do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = setupRouter(t, fakePinger{err: errDown}).do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))
}
