package classifier

import (
	"io"
	"log/slog"
	"testing"

	"github.com/aspectd/aspectd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(policy domain.RatioPolicy) *Classifier {
	return New(policy, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClassify_TwoWayPolicy(t *testing.T) {
	c := newTestClassifier(domain.PolicyTwoWay)

	tests := []struct {
		name   string
		width  int
		height int
		want   domain.Classification
	}{
		{"portrait phone", 1080, 1920, domain.ClassificationTall},
		{"2:3 portrait", 400, 600, domain.ClassificationNotTall}, // exactly on the threshold
		{"taller than 2:3", 400, 601, domain.ClassificationTall},
		{"landscape", 1920, 1080, domain.ClassificationNotTall},
		{"square", 500, 500, domain.ClassificationNotTall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.width, tt.height)
			assert.True(t, got.Success)
			assert.Equal(t, tt.want, got.Classification)
		})
	}
}

func TestClassify_TwoWayRatioValues(t *testing.T) {
	c := newTestClassifier(domain.PolicyTwoWay)

	got := c.Classify(1080, 1920)

	assert.Equal(t, 0.5625, got.AspectRatio)
	assert.Equal(t, 0.56, got.DecimalRatio)
	assert.Equal(t, domain.ClassificationTall, got.Classification)
	assert.Equal(t, "1080:1920", got.RatioText)
}

func TestClassify_ThreeWayPolicy(t *testing.T) {
	c := newTestClassifier(domain.PolicyThreeWay)

	tests := []struct {
		name   string
		width  int
		height int
		want   domain.Classification
	}{
		{"portrait phone", 1080, 1920, domain.ClassificationTall},
		{"landscape", 1920, 1080, domain.ClassificationWide},
		{"square", 500, 500, domain.ClassificationSquare},
		{"4:3 counts as square", 800, 600, domain.ClassificationSquare},
		{"exactly 3:4", 600, 800, domain.ClassificationSquare}, // 0.75 is not below the threshold
		{"exactly 3:2", 600, 400, domain.ClassificationSquare}, // 1.5 is not above the threshold
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.width, tt.height)
			assert.True(t, got.Success)
			assert.Equal(t, tt.want, got.Classification)
		})
	}
}

func TestClassify_ThreeWayWideRatio(t *testing.T) {
	c := newTestClassifier(domain.PolicyThreeWay)

	got := c.Classify(1920, 1080)

	assert.InDelta(t, 1.7777, got.AspectRatio, 0.0001)
	assert.Equal(t, 1.78, got.DecimalRatio)
	assert.Equal(t, domain.ClassificationWide, got.Classification)
}

func TestClassify_Idempotent(t *testing.T) {
	c := newTestClassifier(domain.PolicyTwoWay)

	first := c.Classify(1080, 1920)
	second := c.Classify(1080, 1920)

	assert.Equal(t, first, second)
}

func TestClassify_UnusableInput(t *testing.T) {
	c := newTestClassifier(domain.PolicyTwoWay)

	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"zero width", 0, 600},
		{"zero height", 800, 0},
		{"both zero", 0, 0},
		{"negative width", -800, 600},
		{"negative height", 800, -600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.width, tt.height)

			// Failure still yields a well-formed, fully-typed result.
			require.Equal(t, domain.ClassificationError, got.Classification)
			assert.False(t, got.Success)
			assert.Equal(t, 800, got.Width)
			assert.Equal(t, 600, got.Height)
			assert.Equal(t, 1.33, got.DecimalRatio)
			assert.InDelta(t, 4.0/3.0, got.AspectRatio, 0.0001)
			assert.Equal(t, "800:600", got.RatioText)
		})
	}
}

func TestClassifyDimension_StampsMethod(t *testing.T) {
	c := newTestClassifier(domain.PolicyTwoWay)

	got := c.ClassifyDimension(domain.Dimension{
		Width:  1080,
		Height: 1920,
		Method: domain.DetectionFilenamePattern,
	})

	assert.Equal(t, domain.DetectionFilenamePattern, got.DetectionMethod)
	assert.Equal(t, domain.ClassificationTall, got.Classification)
}

func TestNew_InvalidPolicyFallsBackToTwoWay(t *testing.T) {
	c := newTestClassifier(domain.RatioPolicy("five_way"))

	assert.Equal(t, domain.PolicyTwoWay, c.Policy())
	assert.Equal(t, domain.ClassificationNotTall, c.Classify(500, 500).Classification)
}
