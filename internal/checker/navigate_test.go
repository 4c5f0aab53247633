package checker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sjmori/vacancywatcher/internal/renderer"
)

func weekRender(firstDay int) string {
	var cells string
	for i := 0; i < 7; i++ {
		cells += fmt.Sprintf("<td>8/%d</td>", firstDay+i)
	}
	return "<html><body><table><tr>" + cells + "</tr></table></body></html>"
}

func newTestNavigator(page renderer.Page, maxAttempts int) *Navigator {
	nav := NewNavigator(page, "Next", maxAttempts, 20*time.Millisecond)
	nav.pollInterval = time.Millisecond
	return nav
}

func TestSeekDateAlreadyVisible(t *testing.T) {
	page := renderer.NewScriptedPage(weekRender(1))
	assert.NoError(t, page.Navigate(context.Background(), "https://example.com"))

	nav := newTestNavigator(page, 15)
	res, err := nav.SeekDate(context.Background(), MustTargetDate("2025-08-03"))

	assert.NoError(t, err)
	assert.Equal(t, StateFound, res.State)
	assert.Equal(t, 0, res.Attempts)
	assert.Equal(t, 0, page.Clicks())
}

func TestSeekDateFoundAfterExactClicks(t *testing.T) {
	// Three week windows: 8/1-8/7, 8/8-8/14, 8/15-8/21. The target sits in
	// the third, so exactly two clicks are needed.
	page := renderer.NewScriptedPage(weekRender(1), weekRender(8), weekRender(15))
	assert.NoError(t, page.Navigate(context.Background(), "https://example.com"))

	nav := newTestNavigator(page, 15)
	res, err := nav.SeekDate(context.Background(), MustTargetDate("2025-08-20"))

	assert.NoError(t, err)
	assert.Equal(t, StateFound, res.State)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, page.Clicks())
}

func TestSeekDateExhaustedAtBound(t *testing.T) {
	// The date never scrolls into view; the navigator must stop after
	// exactly maxAttempts clicks, never more
	page := renderer.NewScriptedPage(weekRender(1))
	assert.NoError(t, page.Navigate(context.Background(), "https://example.com"))

	nav := newTestNavigator(page, 4)
	res, err := nav.SeekDate(context.Background(), MustTargetDate("2025-09-20"))

	assert.NoError(t, err)
	assert.Equal(t, StateExhausted, res.State)
	assert.Equal(t, 4, res.Attempts)
	assert.Equal(t, 4, page.Clicks())
	assert.NotEmpty(t, res.Content, "exhaustion still returns the final render")
}

func TestSeekDateExhaustedWhenControlGone(t *testing.T) {
	page := renderer.NewScriptedPage(weekRender(1), weekRender(8))
	page.NextAvailable = 1
	assert.NoError(t, page.Navigate(context.Background(), "https://example.com"))

	nav := newTestNavigator(page, 15)
	res, err := nav.SeekDate(context.Background(), MustTargetDate("2025-09-20"))

	assert.NoError(t, err)
	assert.Equal(t, StateExhausted, res.State)
	assert.Equal(t, 1, res.Attempts)
}

func TestSeekDateCancelled(t *testing.T) {
	page := renderer.NewScriptedPage(weekRender(1))
	assert.NoError(t, page.Navigate(context.Background(), "https://example.com"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	nav := newTestNavigator(page, 15)
	_, err := nav.SeekDate(ctx, MustTargetDate("2025-09-20"))

	assert.Error(t, err)
}
