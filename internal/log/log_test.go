package log

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	entry := logrus.NewEntry(logrus.New()).WithField("printer", "caja")
	ctx := ToContext(context.Background(), entry)

	assert.Equal(t, "caja", FromContext(ctx).Data["printer"])
	assert.NotNil(t, FromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("loud"))
}
