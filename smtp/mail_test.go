package smtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingleLine(t *testing.T) {
	assert.Equal(t, "Activate your subscription", singleLine("Activate your \nsubscription"))
	assert.Equal(t, "Activate your subscription", singleLine("Activate your \r\nsubscription\n"))
	assert.Equal(t, "unchanged", singleLine("unchanged"))
}
