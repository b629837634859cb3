package mutation

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/instamunch/instamunch-api/internal/shared"
)

func TestSucceededEncodesPayloadField(t *testing.T) {
	resp := Succeeded("machine", map[string]string{"id": "m1"}, "Machine created: m1")
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, `{"code":"200","success":true,"message":"Machine created: m1","machine":{"id":"m1"}}`, string(raw))
}

func TestFailedOmitsPayload(t *testing.T) {
	resp := Failed(CodeNotFound, "machine m9 not found")
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, `{"code":"404","success":false,"message":"machine m9 not found"}`, string(raw))
	require.Nil(t, resp.Payload())
}

func TestRecoverMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("%w: machine m1 not found", shared.ErrNotFound), CodeNotFound},
		{fmt.Errorf("%w: name is required", shared.ErrValidation), CodeBadRequest},
		{fmt.Errorf("%w: in use by 2 machines", shared.ErrConflict), CodeConflict},
	}
	for _, tc := range cases {
		resp, err := Recover(tc.err)
		require.NoError(t, err)
		require.False(t, resp.Success)
		require.Equal(t, tc.code, resp.Code)
		require.Equal(t, tc.err.Error(), resp.Message)
	}
}

func TestRecoverPropagatesUnexpectedErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := Recover(boom)
	require.ErrorIs(t, err, boom)
}
