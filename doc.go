// Package aspen is a toolkit of transient popup overlays for creative-app
// plugins, built on [Ebitengine].
//
// Aspen provides the borderless, show-near-the-pointer overlays a plugin
// pops up in response to held or chained keyboard shortcuts: an anchor
// grid, a quick menu, a searchable action panel, and a velocity curve
// editor. It also carries the two numeric engines those overlays feed:
// anchor repositioning that keeps a layer visually fixed while its pivot
// moves, and bidirectional conversion between speed/influence easing and
// normalized cubic-bezier velocity curves.
//
// # Quick start
//
// Build a content, wrap it in a [Popup], and drive it from your update
// loop:
//
//	grid := aspen.NewGridContent(aspen.GridConfig{Columns: 3, Rows: 3})
//	popup := aspen.NewPopup(aspen.KindGrid, grid, aspen.SingleMonitor{})
//	invoker := aspen.NewInvoker(popup, ebiten.KeyY)
//	invoker.OnResult = func(r aspen.Result) {
//		if cell, ok := r.Payload.(aspen.GridCell); ok && r.Applied {
//			// reposition the selected layer's anchor
//			_ = cell
//		}
//	}
//
//	// in ebiten's Update:
//	invoker.Tick(aspen.EbitenPoller{})
//	popup.Tick(ebiten.IsFocused(), 1.0/60)
//
//	// in ebiten's Draw:
//	popup.Draw(screen)
//
// Holding the trigger key shows the overlay in hold-mode (release over an
// option applies it); two quick taps latch it open in click-mode.
//
// # Lifecycle
//
// Every overlay shares one state machine: Hidden, Shown, Closing, Hidden.
// A cycle produces exactly one [Result], either cancelled or applied with
// a payload. Focus loss cancels the overlay unless it is pinned or still
// inside the post-show grace period. Surface creation failure degrades to
// an overlay that never appears; show and hide stay safe to call.
//
// # Numeric engines
//
// [Reposition] moves a layer's pivot to a bounding-box ratio while
// compensating position so the rendered output does not shift.
// [CurveFromEase] and [EaseFromCurve] convert between a host's
// speed/influence temporal easing and the editor's normalized velocity
// curves, with [IntegrateVelocity] as a normalization diagnostic.
//
// [Ebitengine]: https://ebitengine.org
package aspen
