package httpserver

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-admin-service/api/dto"
	"ticket-admin-service/internal/config"
	"ticket-admin-service/internal/resolver"
	"ticket-admin-service/internal/store"
)

// fakeStore is an in-memory store.Store for handler tests. The resolver
// dispatches persistence concurrently, so access is guarded.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*dto.TicketRecord
	updates []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*dto.TicketRecord)}
}

func (f *fakeStore) Get(_ context.Context, id string) (*dto.TicketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeStore) GetAll(_ context.Context, ids []string) ([]*dto.TicketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*dto.TicketRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := f.records[id]; ok {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) Save(_ context.Context, rec *dto.TicketRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.records[rec.ID] = &cp
	return nil
}

func (f *fakeStore) SaveAll(ctx context.Context, recs []*dto.TicketRecord) error {
	for _, rec := range recs {
		if err := f.Save(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *fakeStore) UpdateResolvedNames(_ context.Context, id, franchiseName, outletName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	if rec, ok := f.records[id]; ok {
		rec.FranchiseName = franchiseName
		rec.OutletName = outletName
	}
	return nil
}

func (f *fakeStore) Close() error { return nil }

type staticLookup struct {
	res dto.ResolutionResult
}

func (s *staticLookup) LookupNames(context.Context, string, string) (*dto.ResolutionResult, error) {
	cp := s.res
	return &cp, nil
}

func newTestRouter(st store.Store, lu resolver.Lookup) http.Handler {
	res := resolver.New(lu, st.UpdateResolvedNames, config.Resolver{
		MaxParallelLookups:  2,
		MaxParallelPersists: 2,
		PersistTimeout:      time.Second,
	})
	return NewRouter(st, res, 1<<20)
}

func TestHandleBatchResolve(t *testing.T) {
	st := newFakeStore()
	_ = st.Save(context.Background(), &dto.TicketRecord{ID: "t1", FranchiseID: "F1", OutletID: "O1"})
	_ = st.Save(context.Background(), &dto.TicketRecord{ID: "t2", FranchiseID: "F1", OutletID: "O1"})
	router := newTestRouter(st, &staticLookup{res: dto.ResolutionResult{
		FranchiseName: "Beta Mart", OutletName: "Beta #3", Found: true,
	}})

	body := bytes.NewBufferString(`{"ids":["t1","t2","ghost","t1"]}`)
	req := httptest.NewRequest(http.MethodPost, batchResolvePath, body)
	req.Header.Set("Content-Type", contentTypeJSON)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp batchResolveResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Results, 3)
	assert.True(t, resp.Results["t1"].Found)
	assert.Equal(t, "Beta Mart", resp.Results["t1"].FranchiseName)
	assert.Equal(t, resp.Results["t1"], resp.Results["t2"])
	assert.False(t, resp.Results["ghost"].Found, "unknown ids get an explicit unresolved entry")

	assert.ElementsMatch(t, []string{"t1", "t2"}, st.updates, "freshly resolved names are backfilled")
}

func TestHandleBatchResolve_BadRequests(t *testing.T) {
	router := newTestRouter(newFakeStore(), &staticLookup{})

	req := httptest.NewRequest(http.MethodPost, batchResolvePath, bytes.NewBufferString(`{"ids":["t1"]}`))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)

	req = httptest.NewRequest(http.MethodPost, batchResolvePath, bytes.NewBufferString(`{"ids":[]}`))
	req.Header.Set("Content-Type", contentTypeJSON)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodPost, batchResolvePath, bytes.NewBufferString(`{not json`))
	req.Header.Set("Content-Type", contentTypeJSON)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleBatchResolve_GzipBody(t *testing.T) {
	st := newFakeStore()
	_ = st.Save(context.Background(), &dto.TicketRecord{ID: "t1", FranchiseID: "F1", OutletID: "O1"})
	router := newTestRouter(st, &staticLookup{res: dto.ResolutionResult{Found: true, FranchiseName: "Beta Mart"}})

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(`{"ids":["t1"]}`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	req := httptest.NewRequest(http.MethodPost, batchResolvePath, &buf)
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set(headerContentEncoding, encodingGzip)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp batchResolveResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Results["t1"].Found)
}

func TestHandlePutAndGet(t *testing.T) {
	st := newFakeStore()
	router := newTestRouter(st, &staticLookup{})

	body := bytes.NewBufferString(`{"franchiseId":"F1","outletId":"O1"}`)
	req := httptest.NewRequest(http.MethodPut, baseAPIPath+"/t1", body)
	req.Header.Set("Content-Type", contentTypeJSON)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, baseAPIPath+"/t1", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var rec dto.TicketRecord
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&rec))
	assert.Equal(t, "t1", rec.ID)
	assert.Equal(t, "F1", rec.FranchiseID)
}

func TestHandlePut_BodyIDMismatch(t *testing.T) {
	router := newTestRouter(newFakeStore(), &staticLookup{})

	body := bytes.NewBufferString(`{"id":"other","franchiseId":"F1","outletId":"O1"}`)
	req := httptest.NewRequest(http.MethodPut, baseAPIPath+"/t1", body)
	req.Header.Set("Content-Type", contentTypeJSON)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleGet_NotFound(t *testing.T) {
	router := newTestRouter(newFakeStore(), &staticLookup{})

	req := httptest.NewRequest(http.MethodGet, baseAPIPath+"/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleDelete(t *testing.T) {
	st := newFakeStore()
	_ = st.Save(context.Background(), &dto.TicketRecord{ID: "t1", FranchiseID: "F1", OutletID: "O1"})
	router := newTestRouter(st, &staticLookup{})

	req := httptest.NewRequest(http.MethodDelete, baseAPIPath+"/t1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, baseAPIPath+"/t1", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricRouter_Healthz(t *testing.T) {
	router := NewMetricRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
