package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type NotificationTestSuite struct {
	suite.Suite
	log   *logger.Logger
	event Event
}

func TestNotificationSuite(t *testing.T) {
	suite.Run(t, new(NotificationTestSuite))
}

func (s *NotificationTestSuite) SetupTest() {
	s.log = logger.NewNopLogger()
	s.event = Event{
		Symbol:     "JFC",
		Action:     types.ActionBuy,
		Time:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Indicators: map[string]float64{"rsi": 28.5, "close": 101.25},
	}
}

func (s *NotificationTestSuite) TestNew() {
	tests := []struct {
		name     string
		channel  string
		target   string
		wantNil  bool
		wantCode errors.ErrorCode
	}{
		{name: "disabled", channel: "", wantNil: true},
		{name: "console", channel: "console"},
		{name: "console is case insensitive", channel: " Console "},
		{name: "slack", channel: "slack", target: "http://localhost/hook"},
		{name: "webhook without url", channel: "webhook", wantCode: errors.ErrCodeMissingParameter},
		{name: "script without path", channel: "script", wantCode: errors.ErrCodeMissingParameter},
		{name: "unknown channel", channel: "pigeon", wantCode: errors.ErrCodeUnsupportedChannel},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			n, err := New(tc.channel, tc.target, s.log)
			if tc.wantCode != 0 {
				s.Require().Error(err)
				s.True(errors.HasCode(err, tc.wantCode))
				s.Nil(n)

				return
			}

			s.Require().NoError(err)

			if tc.wantNil {
				s.Nil(n)
			} else {
				s.NotNil(n)
			}
		})
	}
}

func (s *NotificationTestSuite) TestUnsupportedChannelIsConfigurationError() {
	_, err := New("fax", "", s.log)
	s.True(errors.IsConfigurationError(err))
}

func (s *NotificationTestSuite) TestConsoleNotifier() {
	s.NoError(NewConsoleNotifier(s.log).Trigger(context.Background(), s.event))
}

func (s *NotificationTestSuite) TestWebhookNotifier() {
	var received webhookPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.NoError(json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL, s.log)
	s.Require().NoError(err)
	s.Require().NoError(n.Trigger(context.Background(), s.event))

	s.Equal("JFC", received.Symbol)
	s.Equal(types.ActionBuy, received.Action)
	s.Equal(28.5, received.Indicators["rsi"])
	s.Equal("JFC: buy on 2024-03-01\nclose: 101.2500\nrsi: 28.5000", received.Text)
}

func (s *NotificationTestSuite) TestWebhookNotifierErrorStatus() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL, s.log)
	s.Require().NoError(err)

	err = n.Trigger(context.Background(), s.event)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNotificationFailed))
}

func (s *NotificationTestSuite) TestScriptNotifier() {
	if runtime.GOOS == "windows" {
		s.T().Skip("shell scripts are not supported on windows")
	}

	dir := s.T().TempDir()
	out := filepath.Join(dir, "out.txt")
	script := filepath.Join(dir, "notify.sh")
	body := "#!/bin/sh\necho \"$1 $2 $3\" > " + out + "\ncat >> " + out + "\n"
	s.Require().NoError(os.WriteFile(script, []byte(body), 0o700))

	n, err := NewScriptNotifier(script, s.log)
	s.Require().NoError(err)
	s.Require().NoError(n.Trigger(context.Background(), s.event))

	content, err := os.ReadFile(out)
	s.Require().NoError(err)
	s.Equal("JFC buy 2024-03-01\n{\"close\":101.25,\"rsi\":28.5}", string(content))
}

func (s *NotificationTestSuite) TestScriptNotifierFailure() {
	n, err := NewScriptNotifier(filepath.Join(s.T().TempDir(), "missing"), s.log)
	s.Require().NoError(err)

	err = n.Trigger(context.Background(), s.event)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNotificationFailed))
}
