package sparql

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

// newTestClient создаёт клиента для mock SPARQL endpoint.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/sparql", "", 5*time.Second, slog.Default())
	if err != nil {
		t.Fatalf("New ошибка: %v", err)
	}
	return c
}

// readForm читает тело формы запроса.
func readForm(t *testing.T, r *http.Request) url.Values {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("чтение тела: %v", err)
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		t.Fatalf("разбор формы: %v", err)
	}
	return form
}

// TestClient_Query проверяет SELECT: форма query=, Accept и разбор bindings.
func TestClient_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, ожидался POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != contentTypeForm {
			t.Errorf("Content-Type = %q", ct)
		}
		if acc := r.Header.Get("Accept"); acc != acceptResults {
			t.Errorf("Accept = %q", acc)
		}
		form := readForm(t, r)
		if form.Get("query") != "SELECT ?s WHERE { ?s ?p ?o }" {
			t.Errorf("query = %q", form.Get("query"))
		}
		w.Header().Set("Content-Type", acceptResults)
		_, _ = w.Write([]byte(`{"head":{"vars":["s"]},"results":{"bindings":[
			{"s":{"type":"uri","value":"http://example.org/1"}},
			{"s":{"type":"uri","value":"http://example.org/2"}}]}}`))
	})

	res, err := c.Query(context.Background(), "SELECT ?s WHERE { ?s ?p ?o }")
	if err != nil {
		t.Fatalf("Query ошибка: %v", err)
	}
	rows := res.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, ожидалось 2", len(rows))
	}
	if rows[1].Get("s") != "http://example.org/2" {
		t.Errorf("rows[1].s = %q", rows[1].Get("s"))
	}
	if len(res.Head.Vars) != 1 || res.Head.Vars[0] != "s" {
		t.Errorf("head.vars = %v", res.Head.Vars)
	}
}

// TestClient_ForwardsMuHeaders проверяет проброс mu-session-id и mu-call-id.
func TestClient_ForwardsMuHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(HeaderSessionID); got != "http://sessions/1" {
			t.Errorf("mu-session-id = %q", got)
		}
		if got := r.Header.Get(HeaderCallID); got != "42" {
			t.Errorf("mu-call-id = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := WithMuHeaders(context.Background(), MuHeaders{SessionID: "http://sessions/1", CallID: "42"})
	if err := c.Update(ctx, "INSERT DATA { }"); err != nil {
		t.Fatalf("Update ошибка: %v", err)
	}
}

// TestClient_Update проверяет отправку формы update=.
func TestClient_Update(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = readForm(t, r).Get("update")
		w.WriteHeader(http.StatusOK)
	})

	if err := c.Update(context.Background(), "INSERT DATA { <a> <b> <c> }"); err != nil {
		t.Fatalf("Update ошибка: %v", err)
	}
	if got != "INSERT DATA { <a> <b> <c> }" {
		t.Errorf("update = %q", got)
	}
}

// TestClient_ErrorStatus проверяет ошибку при неуспешном статусе endpoint.
func TestClient_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("SP030: syntax error"))
	})

	_, err := c.Query(context.Background(), "SELECT")
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "SP030") {
		t.Errorf("ошибка = %v, ожидался статус и тело ответа", err)
	}

	if err := c.Update(context.Background(), "INSERT"); err == nil {
		t.Fatal("ожидалась ошибка Update")
	}
}

// TestClient_InvalidJSON проверяет ошибку декодирования ответа.
func TestClient_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})

	if _, err := c.Query(context.Background(), "SELECT"); err == nil {
		t.Fatal("ожидалась ошибка декодирования")
	}
}

// TestClient_CheckReady проверяет readiness через ASK {}.
func TestClient_CheckReady(t *testing.T) {
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if q := readForm(t, r).Get("query"); q != "ASK {}" {
			t.Errorf("query = %q", q)
		}
		_, _ = w.Write([]byte(`{"head":{},"boolean":true}`))
	})
	if status, msg := ok.CheckReady(); status != "ok" {
		t.Errorf("status = %q (%s), ожидался ok", status, msg)
	}

	degraded := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"head":{"vars":[]},"results":{"bindings":[]}}`))
	})
	if status, _ := degraded.CheckReady(); status != "degraded" {
		t.Errorf("status = %q, ожидался degraded", status)
	}

	failing := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if status, _ := failing.CheckReady(); status != statusFail {
		t.Errorf("status = %q, ожидался fail", status)
	}
}

// TestNew_InvalidEndpoint проверяет валидацию URL endpoint.
func TestNew_InvalidEndpoint(t *testing.T) {
	if _, err := New("not a url", "", time.Second, slog.Default()); err == nil {
		t.Fatal("ожидалась ошибка для некорректного URL")
	}
}

// TestNew_MissingCACert проверяет ошибку при отсутствующем CA-файле.
func TestNew_MissingCACert(t *testing.T) {
	if _, err := New("https://db/sparql", "/nonexistent/ca.pem", time.Second, slog.Default()); err == nil {
		t.Fatal("ожидалась ошибка загрузки CA")
	}
}
