package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

func TestResourceBuilder(t *testing.T) {
	srv := New(Info{Name: "test", Version: "1.0.0"})

	b := srv.Resource("server-info", "mcp://server/info").
		Description("General information about this server").
		MimeType("application/json").
		Handler(func(ctx context.Context) (*ResourceResult, error) {
			return &ResourceResult{Contents: []ResourceContent{{Text: `{"name":"test"}`}}}, nil
		})
	if b.Err() != nil {
		t.Fatalf("unexpected error: %v", b.Err())
	}

	resources := srv.Resources()
	if len(resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(resources))
	}
	r := resources[0]
	if r.Name != "server-info" || r.URI != "mcp://server/info" || r.MimeType != "application/json" {
		t.Errorf("descriptor = %+v", r)
	}
}

func TestServer_LookupResource(t *testing.T) {
	srv := New(Info{Name: "test", Version: "1.0.0"})
	srv.Resource("server-info", "mcp://server/info").
		Description("General information about this server").
		Handler(func(ctx context.Context) (*ResourceResult, error) { return nil, nil })

	desc, ok := srv.LookupResource("mcp://server/info")
	if !ok {
		t.Fatal("expected resource at mcp://server/info")
	}
	if desc.Name != "server-info" || desc.Description != "General information about this server" {
		t.Errorf("descriptor = %+v", desc)
	}

	for _, uri := range []string{"", "mcp://server/info/", "mcp://server/INFO"} {
		if _, ok := srv.LookupResource(uri); ok {
			t.Errorf("LookupResource(%q) matched, want exact match only", uri)
		}
	}
}

func TestServer_ReadResource(t *testing.T) {
	srv := New(Info{Name: "test", Version: "1.0.0"})
	srv.Resource("server-info", "mcp://server/info").
		MimeType("application/json").
		Handler(func(ctx context.Context) (*ResourceResult, error) {
			return &ResourceResult{Contents: []ResourceContent{{Text: `{"name":"test"}`}}}, nil
		})

	t.Run("fills uri and mime type", func(t *testing.T) {
		res, err := srv.ReadResource(context.Background(), "mcp://server/info")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Contents) != 1 {
			t.Fatalf("expected 1 content, got %d", len(res.Contents))
		}
		c := res.Contents[0]
		if c.URI != "mcp://server/info" || c.MimeType != "application/json" || c.Text != `{"name":"test"}` {
			t.Errorf("content = %+v", c)
		}
	})

	t.Run("exact uri match only", func(t *testing.T) {
		for _, uri := range []string{"mcp://server/info/", "mcp://server/*", "mcp://server/info?x=1"} {
			_, err := srv.ReadResource(context.Background(), uri)
			if !errors.Is(err, protocol.NewNotFound("")) {
				t.Errorf("ReadResource(%q) error = %v, want not found", uri, err)
			}
		}
	})

	t.Run("dispatch by name", func(t *testing.T) {
		res, err := srv.Dispatch(context.Background(), KindResource, "server-info", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Kind() != KindResource {
			t.Errorf("Kind() = %v, want resource", res.Kind())
		}
	})

	t.Run("envelope shape", func(t *testing.T) {
		res, _ := srv.ReadResource(context.Background(), "mcp://server/info")
		data, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"contents":[{"uri":"mcp://server/info","mimeType":"application/json","text":"{\"name\":\"test\"}"}]}`
		if string(data) != want {
			t.Errorf("json = %s, want %s", data, want)
		}
	})
}
