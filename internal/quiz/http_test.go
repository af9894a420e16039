package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signacademy/signquiz/internal/identity"
)

func newTestHandler(t *testing.T) (*testEnv, http.Handler, string) {
	t.Helper()
	env := newTestEnv(t, 10)
	handlers := NewHTTPHandlers(env.svc, zerolog.Nop())

	tokens := identity.NewManager(identity.TokenConfig{Secret: []byte("test-secret")})
	token, err := tokens.Generate(uuid.New(), "Tester")
	require.NoError(t, err)

	mux := http.NewServeMux()
	authed := identity.Require(tokens, zerolog.Nop())
	mux.Handle("/v1/quiz/start", authed(http.HandlerFunc(handlers.Start)))
	mux.Handle("/v1/quiz/answer", authed(http.HandlerFunc(handlers.Answer)))
	mux.Handle("/v1/quiz/finish", authed(http.HandlerFunc(handlers.Finish)))
	mux.Handle("/v1/quiz/status", authed(http.HandlerFunc(handlers.Status)))
	mux.Handle("/v1/quiz/reset", authed(http.HandlerFunc(handlers.Reset)))

	return env, mux, token
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestQuizHTTP_RequiresToken(t *testing.T) {
	_, handler, _ := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/v1/quiz/start", "", StartRequest{Level: 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/v1/quiz/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestQuizHTTP_RejectsBadToken(t *testing.T) {
	_, handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/quiz/start", bytes.NewBufferString(`{"level":1}`))
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_token", body["error"])
}

func TestQuizHTTP_FullFlow(t *testing.T) {
	env, handler, token := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/v1/quiz/start", token, StartRequest{Level: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correct_index")

	var start StartResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))
	require.Equal(t, 3, start.Total)
	for _, q := range start.Questions {
		assert.Len(t, q.Choices, 4)
		assert.NotEmpty(t, q.MediaRef)
	}

	key := env.answerKey(t, start.SessionID)
	questionIndex := 0
	rec = doJSON(t, handler, http.MethodPost, "/v1/quiz/answer", token, AnswerRequest{
		SessionID:     start.SessionID.String(),
		QuestionIndex: &questionIndex,
		Choice:        key[0],
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var answer AnswerResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.True(t, answer.Correct)

	rec = doJSON(t, handler, http.MethodPost, "/v1/quiz/finish", token, FinishRequest{
		SessionID: start.SessionID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var finish FinishResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &finish))
	assert.Equal(t, 1, finish.CorrectCount)
	assert.Equal(t, 1, finish.Stars)
	assert.Equal(t, ScoreCorrect+2*ScoreWrong, finish.FinalScore)

	rec = doJSON(t, handler, http.MethodGet, "/v1/quiz/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unlockedLevel")
}

func TestQuizHTTP_ErrorMapping(t *testing.T) {
	_, handler, token := newTestHandler(t)

	// Locked level.
	rec := doJSON(t, handler, http.MethodPost, "/v1/quiz/start", token, StartRequest{Level: 5})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "level_locked")

	// Unknown session.
	questionIndex := 0
	rec = doJSON(t, handler, http.MethodPost, "/v1/quiz/answer", token, AnswerRequest{
		SessionID:     uuid.NewString(),
		QuestionIndex: &questionIndex,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing question index.
	rec = doJSON(t, handler, http.MethodPost, "/v1/quiz/answer", token, map[string]string{
		"session_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "question_index")

	// Malformed JSON.
	req := httptest.NewRequest(http.MethodPost, "/v1/quiz/start", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	raw := httptest.NewRecorder()
	handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestQuizHTTP_DoubleFinishConflicts(t *testing.T) {
	_, handler, token := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/v1/quiz/start", token, StartRequest{Level: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	var start StartResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))

	finishReq := FinishRequest{SessionID: start.SessionID.String()}
	rec = doJSON(t, handler, http.MethodPost, "/v1/quiz/finish", token, finishReq)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/v1/quiz/finish", token, finishReq)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_finished")
}

func TestQuizHTTP_MethodNotAllowed(t *testing.T) {
	_, handler, token := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/v1/quiz/start", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestQuizHTTP_SessionsAreOwnerScoped(t *testing.T) {
	_, handler, token := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/v1/quiz/start", token, StartRequest{Level: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	var start StartResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))

	// A different user sees someone else's session as missing.
	tokens := identity.NewManager(identity.TokenConfig{Secret: []byte("test-secret")})
	otherToken, err := tokens.Generate(uuid.New(), "Other")
	require.NoError(t, err)

	rec = doJSON(t, handler, http.MethodPost, "/v1/quiz/finish", otherToken, FinishRequest{
		SessionID: start.SessionID.String(),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuizHTTP_ResetReturnsFreshLedger(t *testing.T) {
	env, handler, token := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/v1/quiz/start", token, StartRequest{Level: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	var start StartResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))

	key := env.answerKey(t, start.SessionID)
	for i := range key {
		idx := i
		rec = doJSON(t, handler, http.MethodPost, "/v1/quiz/answer", token, AnswerRequest{
			SessionID:     start.SessionID.String(),
			QuestionIndex: &idx,
			Choice:        key[i],
		})
		require.Equal(t, http.StatusOK, rec.Code, fmt.Sprintf("answer %d", i))
	}

	rec = doJSON(t, handler, http.MethodPost, "/v1/quiz/reset", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalScore":0`)
	assert.Contains(t, rec.Body.String(), `"unlockedLevel":1`)
}
