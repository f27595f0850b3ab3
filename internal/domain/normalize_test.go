package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBatch_SingleObject(t *testing.T) {
	body := []byte(`{"user":"agus","ts":1710000000000,"n":12.5,"p":4.1,"k":20}`)

	batch, err := NormalizeBatch(body)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	m := batch[0]
	assert.Equal(t, "agus", m.User)
	assert.Equal(t, int64(1710000000000), m.TS)
	require.NotNil(t, m.N)
	assert.Equal(t, 12.5, *m.N)
}

func TestNormalizeBatch_Array(t *testing.T) {
	body := []byte(`[{"user":"a","ts":1},{"user":"b","ts":2},{"user":"c","ts":3}]`)

	batch, err := NormalizeBatch(body)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, "a", batch[0].User)
	assert.Equal(t, "c", batch[2].User)
}

func TestNormalizeBatch_PreservesInputOrder(t *testing.T) {
	body := []byte(`[{"ts":300},{"ts":100},{"ts":200}]`)

	batch, err := NormalizeBatch(body)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, int64(300), batch[0].TS)
	assert.Equal(t, int64(100), batch[1].TS)
	assert.Equal(t, int64(200), batch[2].TS)
}

func TestNormalizeBatch_IdentityReconciliation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"user only", `{"user":"agus"}`, "agus"},
		{"username only", `{"username":"budi"}`, "budi"},
		{"user wins over username", `{"user":"agus","username":"budi"}`, "agus"},
		{"empty user falls back", `{"user":"  ","username":"budi"}`, "budi"},
		{"neither present", `{"ts":1}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := NormalizeBatch([]byte(tt.body))
			require.NoError(t, err)
			require.Len(t, batch, 1)
			assert.Equal(t, tt.want, batch[0].User)
		})
	}
}

func TestNormalizeBatch_TimestampAlias(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int64
	}{
		{"ts field", `{"ts":1710000000000}`, 1710000000000},
		{"timestamp alias", `{"timestamp":1710000000001}`, 1710000000001},
		{"ts wins over timestamp", `{"ts":5,"timestamp":9}`, 5},
		{"absent", `{"user":"x"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := NormalizeBatch([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, batch[0].TS)
		})
	}
}

func TestNormalizeBatch_DropsNonObjectElements(t *testing.T) {
	body := []byte(`[{"user":"a","ts":1},42,"garbage",null,{"user":"b","ts":2},[1,2]]`)

	batch, err := NormalizeBatch(body)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "a", batch[0].User)
	assert.Equal(t, "b", batch[1].User)
}

func TestNormalizeBatch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"empty body", "", ErrEmptyPayload},
		{"whitespace body", "   \n\t", ErrEmptyPayload},
		{"bare string", `"hello"`, ErrInvalidPayload},
		{"bare number", `42`, ErrInvalidPayload},
		{"bare bool", `true`, ErrInvalidPayload},
		{"malformed array", `[{"user":"a"`, ErrInvalidPayload},
		{"malformed object", `{"user":`, ErrInvalidPayload},
		{"object with trailing garbage", `{"user":"a"}}}`, ErrInvalidPayload},
		{"all elements garbage", `[1,"two",null]`, ErrNoValidRecords},
		{"empty array", `[]`, ErrNoValidRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeBatch([]byte(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeBatch_DropsClientSuppliedLocationName(t *testing.T) {
	body := []byte(`{"user":"a","ts":1,"location_name":"spoofed place"}`)

	batch, err := NormalizeBatch(body)
	require.NoError(t, err)
	assert.Empty(t, batch[0].LocationName)
}

func TestNormalizeBatch_Location(t *testing.T) {
	body := []byte(`{"user":"a","ts":1,"location":{"latitude":-6.2,"longitude":106.8}}`)

	batch, err := NormalizeBatch(body)
	require.NoError(t, err)

	loc := batch[0].Location
	require.True(t, loc.HasCoordinates())
	assert.Equal(t, -6.2, *loc.Latitude)
	assert.Equal(t, 106.8, *loc.Longitude)
}

func TestNormalizeBatch_PartialLocation(t *testing.T) {
	body := []byte(`{"user":"a","ts":1,"location":{"latitude":-6.2}}`)

	batch, err := NormalizeBatch(body)
	require.NoError(t, err)
	assert.False(t, batch[0].Location.HasCoordinates())
}

func TestNormalizeBatch_TrimsNote(t *testing.T) {
	batch, err := NormalizeBatch([]byte(`{"user":"a","note":"  plot 7  "}`))
	require.NoError(t, err)
	require.NotNil(t, batch[0].Note)
	assert.Equal(t, "plot 7", *batch[0].Note)

	batch, err = NormalizeBatch([]byte(`{"user":"a","note":"   "}`))
	require.NoError(t, err)
	assert.Nil(t, batch[0].Note)
}

func TestNormalizeBatch_TrimsProjectName(t *testing.T) {
	batch, err := NormalizeBatch([]byte(`{"user":"a","project_name":" padi blok A "}`))
	require.NoError(t, err)
	require.NotNil(t, batch[0].ProjectName)
	assert.Equal(t, "padi blok A", *batch[0].ProjectName)

	batch, err = NormalizeBatch([]byte(`{"user":"a","project_name":""}`))
	require.NoError(t, err)
	assert.Nil(t, batch[0].ProjectName)
}

func TestNormalizeBatch_StampsReceivedAt(t *testing.T) {
	frozen := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })

	batch, err := NormalizeBatch([]byte(`{"user":"a","ts":1}`))
	require.NoError(t, err)
	assert.Equal(t, frozen, batch[0].ReceivedAt)
}
