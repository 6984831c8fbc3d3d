package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.BaseURL == "" {
		s.T().Skip("E2E_BASE_URL not set")
	}
	s.client = &http.Client{Timeout: 5 * time.Second}
}

func (s *BaseHTTPSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Do sends a JSON request as user (no identity header when empty) and
// decodes the response into out when it is not nil.
func (s *BaseHTTPSuite) Do(method, path, user string, body, out any) int {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		payload = bytes.NewReader(raw)
	}
	request, err := http.NewRequest(method, s.Config.BaseURL+path, payload)
	s.Require().NoError(err)
	request.Header.Set("Content-Type", "application/json")
	if user != "" {
		request.Header.Set(s.Config.UserHeader, user)
	}

	start := time.Now()
	response, err := s.client.Do(request)
	s.Require().NoError(err)
	defer response.Body.Close()
	raw, err := io.ReadAll(response.Body)
	s.Require().NoError(err)

	line := fmt.Sprintf("HTTP %s %s [%d] in %v", method, path, response.StatusCode, time.Since(start))
	if s.Config.DebugJSON && len(raw) > 0 {
		line += "\n" + string(raw)
	}
	if s.Config.Colours && response.StatusCode >= http.StatusBadRequest {
		line = color.Yellow.Render(line)
	}
	s.T().Log(line)

	if out != nil && response.StatusCode < http.StatusBadRequest {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return response.StatusCode
}
