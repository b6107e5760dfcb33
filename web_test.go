package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Registering the full route table must not panic; httprouter rejects
// conflicting patterns at registration time, not at request time.
func TestRegisterQuizRoutes(t *testing.T) {
	cfg := testConfig()
	reg := newRegistry(cfg)

	mux := httprouter.New()
	require.NotPanics(t, func() {
		registerQuizRoutes(cfg, reg, mux)
	})
}

func TestRoomPageAndQR(t *testing.T) {
	cfg := testConfig()
	reg := newRegistry(cfg)

	mux := httprouter.New()
	registerQuizRoutes(cfg, reg, mux)

	room, err := reg.CreateRoom(ModeQuiz, Content{
		Title:     "trivia night",
		Questions: quizQuestions(1),
	}, 0)
	require.NoError(t, err)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/quiz/" + room.code)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/quiz/" + room.code + "/qr")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	// Codes never contain lowercase letters, so this one cannot exist.
	resp, err = http.Get(srv.URL + "/quiz/nosuch")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/quiz/nosuch/qr")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocketEndpointRejectsPlainGET(t *testing.T) {
	cfg := testConfig()
	reg := newRegistry(cfg)

	mux := httprouter.New()
	registerQuizRoutes(cfg, reg, mux)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
