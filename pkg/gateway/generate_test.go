package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew/ai-gateway/pkg/models"
	"github.com/andrew/ai-gateway/pkg/queue"
)

func TestGenerateLongIsQueuedWithoutInference(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.post(t, "/api/ai/generate", generateRequest{
		Prompt: "Write a novel about tides",
		Length: "long",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var out generateResponse
	decode(t, resp, &out)
	assert.Equal(t, "queued", out.Status)
	assert.NotEmpty(t, out.RequestID)

	_, _, generate, _ := e.llm.counts()
	assert.Zero(t, generate, "long jobs never call the model synchronously")

	jobs, err := e.queue.Dequeue(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobContentGeneration, jobs[0].Type)
	assert.Equal(t, out.RequestID, jobs[0].RequestID)
	assert.Equal(t, "user-1", jobs[0].UserID)
}

func TestGenerateBookIsQueued(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.post(t, "/api/ai/generate", generateRequest{
		Prompt: "A history of lighthouses",
		Type:   "book",
		Length: "long",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var out generateResponse
	decode(t, resp, &out)
	assert.Equal(t, "queued", out.Status)
	assert.Equal(t, 1, e.queue.Len())
}

func TestGenerateShortInline(t *testing.T) {
	e := newEnv(t, nil)
	e.llm.generateResponse = "A short poem about rain."

	resp := e.post(t, "/api/ai/generate", generateRequest{
		Prompt: "Write a poem about rain",
		Type:   "article",
		Length: "short",
		Style:  "lyrical",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out generateResponse
	decode(t, resp, &out)
	assert.Equal(t, "A short poem about rain.", out.Content)
	assert.NotEmpty(t, out.RequestID)
	assert.Equal(t, "article", out.Metadata["type"])

	// The style tag shapes the system preamble.
	assert.Contains(t, e.llm.lastPrompt, "lyrical")
	assert.Contains(t, e.llm.lastPrompt, "Write a poem about rain")
}

func TestGenerateOversizedOutputIsStored(t *testing.T) {
	e := newEnv(t, func(_ *env, opts *Options) {
		opts.InlineThreshold = 32
	})
	e.llm.generateResponse = strings.Repeat("long output ", 100)

	resp := e.post(t, "/api/ai/generate", generateRequest{Prompt: "Elaborate", Length: "medium"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out generateResponse
	decode(t, resp, &out)
	assert.Equal(t, "stored", out.Status)
	assert.NotEmpty(t, out.URL)
	assert.Empty(t, out.Content)

	stored, ok := e.artifacts.content["user-1/"+out.RequestID]
	require.True(t, ok, "artifact must be stored under (user, request id)")
	assert.Equal(t, e.llm.generateResponse, stored)
}

func TestGenerateEnqueueFailureIsUnavailable(t *testing.T) {
	full := queue.NewMemoryQueue(1)
	require.NoError(t, full.Enqueue(context.Background(), &models.QueuedJob{RequestID: "occupies-slot"}))
	e := newEnv(t, func(_ *env, opts *Options) {
		opts.Queue = full
	})

	resp := e.post(t, "/api/ai/generate", generateRequest{Prompt: "big job", Length: "long"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGenerateValidation(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.post(t, "/api/ai/generate", generateRequest{Length: "long"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.post(t, "/api/ai/generate", generateRequest{Prompt: "x", Length: "gigantic"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, _, generate, _ := e.llm.counts()
	assert.Zero(t, generate)
	assert.Zero(t, e.queue.Len())
}

func TestGenerateInferenceFailure(t *testing.T) {
	e := newEnv(t, nil)
	e.llm.generateErr = errors.New("model crashed")

	resp := e.post(t, "/api/ai/generate", generateRequest{Prompt: "x", Length: "short"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
