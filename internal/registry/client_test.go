package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	require.Error(t, err)
}

func TestNewClient_StripsTrailingSlash(t *testing.T) {
	client, err := NewClient(ClientConfig{BaseURL: "http://registry.local/"})
	require.NoError(t, err)
	assert.Equal(t, "http://registry.local", client.BaseURL())
}

func TestClient_List(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`[
			{"name": "bert-base-uncased", "id": "m1", "type": "model"},
			{"name": "squad", "id": "d1", "type": "dataset"}
		]`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	summaries, err := client.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/artifacts", gotPath)

	// Listing is the wildcard query with no type filter
	var queries []map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &queries))
	require.Len(t, queries, 1)
	assert.Equal(t, "*", queries[0]["name"])
	assert.Empty(t, queries[0]["types"])

	require.Len(t, summaries, 2)
	assert.Equal(t, ArtifactSummary{Name: "bert-base-uncased", ID: "m1", Type: TypeModel}, summaries[0])
	assert.Equal(t, TypeDataset, summaries[1].Type)
}

func TestClient_List_FollowsOffsetPages(t *testing.T) {
	var gotOffsets []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.Header.Get("offset")
		gotOffsets = append(gotOffsets, offset)
		switch offset {
		case "":
			w.Header().Set("offset", "50")
			_, _ = w.Write([]byte(`[{"name": "bert", "id": "m1", "type": "model"}]`))
		case "50":
			w.Header().Set("offset", "100")
			_, _ = w.Write([]byte(`[{"name": "squad", "id": "d1", "type": "dataset"}]`))
		default:
			// Last page carries no offset header
			_, _ = w.Write([]byte(`[{"name": "tokenizer", "id": "c1", "type": "code"}]`))
		}
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	summaries, err := client.List(context.Background())
	require.NoError(t, err)

	// Each response's offset header came back on the next request
	assert.Equal(t, []string{"", "50", "100"}, gotOffsets)

	require.Len(t, summaries, 3)
	assert.Equal(t, "m1", summaries[0].ID)
	assert.Equal(t, "d1", summaries[1].ID)
	assert.Equal(t, "c1", summaries[2].ID)
}

func TestClient_List_MidPageErrorFailsWhole(t *testing.T) {
	var requests int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		if requests == 1 {
			w.Header().Set("offset", "50")
			_, _ = w.Write([]byte(`[{"name": "bert", "id": "m1", "type": "model"}]`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "database unavailable"}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, 2, requests)
}

func TestClient_Search(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`[{"name": "bert-large", "id": "m2", "type": "model"}]`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	summaries, err := client.Search(context.Background(), "bert.*")
	require.NoError(t, err)

	assert.Equal(t, "/artifact/byRegEx", gotPath)
	assert.Equal(t, "bert.*", gotBody["regex"])
	require.Len(t, summaries, 1)
	assert.Equal(t, "m2", summaries[0].ID)
}

func TestClient_Search_NotFoundIsTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "No artifact found under this regex"}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "no-such-artifact")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTerminal(err))
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestClient_Rate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/artifact/model/m1/rate", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"net_score": 0.82,
			"ramp_up": 0.9,
			"ramp_up_latency": 12,
			"name": "not-a-number"
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	result, err := client.Rate(context.Background(), "m1")
	require.NoError(t, err)

	require.NotNil(t, result.NetScore)
	assert.InDelta(t, 0.82, *result.NetScore, 1e-9)
	// Every numeric field lands in Scores; strings are skipped
	assert.InDelta(t, 0.9, result.Scores["ramp_up"], 1e-9)
	assert.InDelta(t, 12, result.Scores["ramp_up_latency"], 1e-9)
	assert.NotContains(t, result.Scores, "name")
}

func TestClient_Rate_MissingNetScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ramp_up": 0.5}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	result, err := client.Rate(context.Background(), "m1")
	require.NoError(t, err)
	assert.Nil(t, result.NetScore)
}

func TestClient_Cost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/artifact/dataset/d1/cost", r.URL.Path)
		_, _ = w.Write([]byte(`{"d1": {"total_cost": 120.5}}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	costs, err := client.Cost(context.Background(), TypeDataset, "d1")
	require.NoError(t, err)
	assert.InDelta(t, 120.5, costs["d1"].TotalCost, 1e-9)
}

func TestClient_Submit(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"metadata": {"name": "bert", "id": "m9", "type": "model"},
			"data": {"url": "https://example.com/bert"}
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	created, err := client.Submit(context.Background(), SubmissionRequest{
		Type: TypeModel,
		URL:  "https://example.com/bert",
	})
	require.NoError(t, err)

	assert.Equal(t, "/artifact/model", gotPath)
	assert.Equal(t, "https://example.com/bert", gotBody["url"])
	assert.Equal(t, "m9", created.Metadata.ID)
}

func TestClient_Submit_RejectsInvalidType(t *testing.T) {
	client, err := NewClient(ClientConfig{BaseURL: "http://registry.local"})
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), SubmissionRequest{Type: "plugin", URL: "https://x"})
	require.Error(t, err)
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/artifacts/model/m1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"metadata": {"name": "bert", "id": "m1", "type": "model"},
			"data": {"url": "https://example.com/bert", "download_url": "https://cdn.example.com/bert.tar"}
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	artifact, err := client.Get(context.Background(), TypeModel, "m1")
	require.NoError(t, err)
	assert.Equal(t, "bert", artifact.Metadata.Name)
	assert.Equal(t, "https://cdn.example.com/bert.tar", artifact.Data.DownloadURL)
}

func TestClient_UpdateDeleteReset(t *testing.T) {
	type call struct{ method, path string }
	var calls []call

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	artifact := Artifact{
		Metadata: ArtifactMetadata{Name: "bert", ID: "m1", Type: TypeModel},
		Data:     ArtifactData{URL: "https://example.com/bert-v2"},
	}
	require.NoError(t, client.Update(context.Background(), artifact))
	require.NoError(t, client.Delete(context.Background(), TypeModel, "m1"))
	require.NoError(t, client.Reset(context.Background()))

	require.Len(t, calls, 3)
	assert.Equal(t, call{http.MethodPut, "/artifacts/model/m1"}, calls[0])
	assert.Equal(t, call{http.MethodDelete, "/artifacts/model/m1"}, calls[1])
	assert.Equal(t, call{http.MethodDelete, "/reset"}, calls[2])
}

func TestClient_ErrorMessageFromJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "database unavailable"}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestClient_TransportErrorIsNotTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // Refuse connections

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, StatusOf(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsTerminal(err))
}

func TestClient_MalformedBodyIsPlainError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, StatusOf(err))
}

func TestClient_SetsRequestID(t *testing.T) {
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, gotRequestID)
}
