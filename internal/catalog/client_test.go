package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/products"})
	require.NoError(t, err)
	return c
}

func TestNewNormalizesBaseURL(t *testing.T) {
	c, err := New(Options{BaseURL: " http://api:8000/products "})
	require.NoError(t, err)
	assert.Equal(t, "http://api:8000/products/", c.BaseURL())

	_, err = New(Options{})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "ftp://api/products/"})
	assert.Error(t, err)
}

func TestListProducts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Contains(t, r.Header.Get("User-Agent"), "catalogbot/")
		_, _ = io.WriteString(w, `[{"id":1,"name":"Lamp","description":null,"price":12.5},{"id":2,"name":"Desk","description":"Oak","price":99}]`)
	})

	got, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Nil(t, got[0].Description)
	assert.Equal(t, "Oak", *got[1].Description)
}

func TestGetProductNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/7", r.URL.Path)
		http.Error(w, `{"detail":"Product not found"}`, http.StatusNotFound)
	})

	_, err := c.GetProduct(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
}

func TestCreateProductSendsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"name": "Widget", "description": "A nice widget", "price": 9.99}, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":3,"name":"Widget","description":"A nice widget","price":9.99}`)
	})

	p, err := c.CreateProduct(context.Background(), ProductInput{Name: "Widget", Description: strPtr("A nice widget"), Price: 9.99})
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
}

func TestUpdateProductOmitsID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/7", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "id")
		assert.Nil(t, body["description"])
		_, _ = io.WriteString(w, `{"id":7,"name":"Lamp","description":null,"price":10}`)
	})

	orig := Product{ID: 7, Name: "Lamp", Price: 10}
	_, err := c.UpdateProduct(context.Background(), orig.ID, orig.Input())
	require.NoError(t, err)
}

func TestDeleteProductStatuses(t *testing.T) {
	status := http.StatusNoContent
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(status)
		if status >= 500 {
			_, _ = io.WriteString(w, "  database is down \n")
		}
	})

	require.NoError(t, c.DeleteProduct(context.Background(), 3))

	status = http.StatusNotFound
	assert.ErrorIs(t, c.DeleteProduct(context.Background(), 3), ErrNotFound)

	status = http.StatusInternalServerError
	err := c.DeleteProduct(context.Background(), 3)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "database is down", se.Body)
	assert.Equal(t, "catalog_5xx", se.Code())
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "500 Internal Server Error")
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url + "/products/", Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.ListProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list: request failed")
	assert.False(t, IsNotFound(err))
}

func TestDecodeErrorIsReported(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	})
	_, err := c.GetProduct(context.Background(), 1)
	assert.ErrorContains(t, err, "get: decode response")
}
