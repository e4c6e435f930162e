package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/apperr"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "5551234567", want: "+15551234567"},
		{in: "(555) 123-4567", want: "+15551234567"},
		{in: "+44 20 7946 0958", want: "+442079460958"},
		{in: "15551234567", want: "+15551234567"},
		{in: "+919876543210", want: "+919876543210"},
		{in: "12345", wantErr: true},
		{in: "1234567890123456", wantErr: true},
		{in: "555-CALL-NOW", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatPhone(tt.in, "1")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeAPI struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM0001"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSender(t *testing.T) {
	ctx := context.Background()

	t.Run("sends formatted number", func(t *testing.T) {
		api := &fakeAPI{}
		s := newTwilioSender(api, TwilioConfig{FromNumber: "+15550000000", DefaultCountryCode: "1"})

		id, err := s.Send(ctx, "555 123 4567", "hello")
		require.NoError(t, err)
		assert.Equal(t, "SM0001", id)
		require.Len(t, api.params, 1)
		assert.Equal(t, "+15551234567", *api.params[0].To)
		assert.Equal(t, "+15550000000", *api.params[0].From)
		assert.Equal(t, "hello", *api.params[0].Body)
	})

	t.Run("provider failure is a dependency error", func(t *testing.T) {
		api := &fakeAPI{err: errors.New("status 500")}
		s := newTwilioSender(api, TwilioConfig{FromNumber: "+15550000000", DefaultCountryCode: "1"})

		_, err := s.Send(ctx, "5551234567", "hello")
		assert.True(t, apperr.IsDependency(err))
	})

	t.Run("invalid phone never reaches the provider", func(t *testing.T) {
		api := &fakeAPI{}
		s := newTwilioSender(api, TwilioConfig{DefaultCountryCode: "1"})

		_, err := s.Send(ctx, "123", "hello")
		assert.True(t, apperr.IsValidation(err))
		assert.Empty(t, api.params)
	})

	t.Run("cancelled context stops a rate limited send", func(t *testing.T) {
		api := &fakeAPI{}
		s := newTwilioSender(api, TwilioConfig{DefaultCountryCode: "1", RatePerSecond: 0.001, Burst: 1})

		_, err := s.Send(ctx, "5551234567", "first")
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = s.Send(cancelled, "5551234567", "second")
		assert.True(t, apperr.IsDependency(err))
		assert.Len(t, api.params, 1)
	})
}

func TestLogSender(t *testing.T) {
	id, err := LogSender{}.Send(context.Background(), "+15551234567", "hi")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "log-"))
}
