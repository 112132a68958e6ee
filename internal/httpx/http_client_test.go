package httpx

import (
	"testing"
	"time"
)

func TestConfigureExternalHTTPClient(t *testing.T) {
	defer ConfigureExternalHTTPClient(0)

	if got := ConfigureExternalHTTPClient(0); got != defaultExternalHTTPTimeout {
		t.Errorf("zero seconds should keep the default, got %s", got)
	}
	if got := ConfigureExternalHTTPClient(-5); got != defaultExternalHTTPTimeout {
		t.Errorf("negative seconds should keep the default, got %s", got)
	}

	if got := ConfigureExternalHTTPClient(5); got != 5*time.Second {
		t.Errorf("expected 5s, got %s", got)
	}
	if ExternalHTTPClient().Timeout != 5*time.Second {
		t.Errorf("shared client timeout not applied: %s", ExternalHTTPClient().Timeout)
	}
}
