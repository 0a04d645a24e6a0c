// internal/server/server_test.go

package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/yanizio/atrium/internal/config"
)

func TestNewAppliesDefaults(t *testing.T) {
	srv := New(config.HTTP{ListenAddr: ":8080"}, http.NotFoundHandler())

	if srv.Addr != ":8080" {
		t.Errorf("addr = %q", srv.Addr)
	}
	if srv.ReadTimeout != DefaultReadTimeout {
		t.Errorf("read timeout = %v, want %v", srv.ReadTimeout, DefaultReadTimeout)
	}
	if srv.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("write timeout = %v, want %v", srv.WriteTimeout, DefaultWriteTimeout)
	}
	if srv.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("idle timeout = %v, want %v", srv.IdleTimeout, DefaultIdleTimeout)
	}
}

func TestNewHonorsConfiguredTimeouts(t *testing.T) {
	cfg := config.HTTP{
		ListenAddr:   ":8080",
		ReadTimeout:  5,
		WriteTimeout: 30,
		IdleTimeout:  120,
	}
	srv := New(cfg, http.NotFoundHandler())

	if srv.ReadTimeout != 5*time.Second {
		t.Errorf("read timeout = %v", srv.ReadTimeout)
	}
	if srv.WriteTimeout != 30*time.Second {
		t.Errorf("write timeout = %v", srv.WriteTimeout)
	}
	if srv.IdleTimeout != 120*time.Second {
		t.Errorf("idle timeout = %v", srv.IdleTimeout)
	}
}
