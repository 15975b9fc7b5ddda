package maintenance

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

func TestStatusRoundTrip(t *testing.T) {
	b, err := json.Marshal(Overdue)
	assert.NoError(t, err)
	assert.Equal(t, `"overdue"`, string(b))

	var s Status
	assert.NoError(t, json.Unmarshal([]byte(`"scheduled"`), &s))
	assert.Equal(t, Scheduled, s)

	assert.Error(t, json.Unmarshal([]byte(`"retired"`), &s))
}

func TestStatusScan(t *testing.T) {
	var s Status
	assert.NoError(t, s.Scan("completed"))
	assert.Equal(t, Completed, s)

	assert.NoError(t, s.Scan([]byte("overdue")))
	assert.Equal(t, Overdue, s)

	assert.ErrorIs(t, s.Scan(42), ErrInvalidStatus)
	assert.ErrorIs(t, s.Scan("retired"), ErrInvalidStatus)
}
