package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const probeTimeout = 10 * time.Second

// Probe checks that serverURL hosts an archive API by requesting its
// rating configuration, which needs no credential.
func Probe(ctx context.Context, serverURL string) error {
	serverURL = strings.TrimRight(serverURL, "/")
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return fmt.Errorf("server URL must start with http:// or https://")
	}

	client := &http.Client{Timeout: probeTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+"/api/config", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var cfg configDTO
	if err := json.Unmarshal(body, &cfg); err != nil {
		return fmt.Errorf("not an archive server: %w", err)
	}
	if len(cfg.Content) == 0 && len(cfg.Safety) == 0 {
		return fmt.Errorf("not an archive server: empty rating configuration")
	}
	return nil
}
