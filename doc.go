/*
Package vlist provides a virtualized list engine: it lets a UI display an
effectively unbounded ordered collection while keeping the number of live
on-screen elements bounded and constant.

The engine is framework-agnostic. It owns no pixels and no widgets; it
computes which items are visible, at which pixel offsets, and the caller's
rendering layer draws exactly those. Variable item sizes are supported
through estimate-then-measure: items start with an estimated extent and are
promoted to their real extent once the rendering layer has measured them.

# Overview

A List wires together five components:

  - SizeOracle: estimated or measured pixel extent per item index.
  - RangeCalculator: scroll offset -> contiguous visible index range,
    with per-item offsets and an overscan safety margin.
  - PositionStore: a capacity- and age-bounded scroll position cache
    keyed by navigation identity, surviving across navigation.
  - Pager: a small state machine that loads the next page when the
    rendered window approaches the end of the backing collection.
  - PerfSampler: optional frame-time and visible-count sampling.

# Quick Start

	items := make([]vlist.Item[string], 0, 50)
	for i := 0; i < 50; i++ {
	    items = append(items, vlist.Item[string]{ID: fmt.Sprint(i), Data: "row"})
	}

	list := vlist.NewList(items,
	    vlist.WithViewport(600),
	    vlist.WithFixedSize(60),
	    vlist.WithOverscan(5),
	    vlist.WithRestoreKey("rankings:weekly"),
	)
	list.SetLoadMore(ctx, func(ctx context.Context) (vlist.Page[string], error) {
	    return fetchNextPage(ctx)
	})

	// UI scroll handler:
	list.HandleScroll(offset)
	for _, it := range list.VisibleRange().Items {
	    item, _ := list.ItemAt(it.Index)
	    drawRow(item, it.Start, it.Size)          // absolute pixel offsets
	    list.CommitSize(it.Index, measuredHeight) // variable-size mode only
	}

Scroll events arrive at native event-loop frequency; HandleScroll coalesces
all per-scroll work (range recomputation, position save, sampling) to at
most one pass per configured interval (default one frame, ~16ms). Call
Flush at quiescence to apply a trailing scroll event that arrived inside
the coalescing window.

# Scroll position restore

Positions are saved under a caller-chosen restore key and recalled on a
later mount with the same key:

	store := vlist.NewPositionStore(vlist.WithBackend(vlist.NewFileBackend(path)))
	list := vlist.NewList(items, vlist.WithPositionStore(store),
	    vlist.WithRestoreKey("rankings:weekly"))
	list.RestoreScrollPosition() // applied on the next scroll tick

Records expire after a configurable age and the store evicts the oldest
records beyond its capacity, so the cache never grows without bound.
*/
package vlist
