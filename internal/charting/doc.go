// Package charting renders bar, line, pie and doughnut charts as PNG images
// using go-chart.
//
// Default returns a shared renderer created on first use. Render never keeps
// state between calls, so the shared renderer can serve concurrent requests.
package charting
