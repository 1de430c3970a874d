package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Window is an inclusive (i,j,k) index box. Storage order over a window is i fastest, then j, then k.
type Window struct {
	Lo, Hi [3]int
}

func NewWindow(lo, hi [3]int) Window {
	return Window{Lo: lo, Hi: hi}
}

// Dims is the number of indices along each axis, zero for an empty axis
func (w Window) Dims() (d [3]int) {
	for n := 0; n < 3; n++ {
		if d[n] = w.Hi[n] - w.Lo[n] + 1; d[n] < 0 {
			d[n] = 0
		}
	}
	return
}

func (w Window) Size() int {
	d := w.Dims()
	return d[0] * d[1] * d[2]
}

func (w Window) Contains(i, j, k int) bool {
	return i >= w.Lo[0] && i <= w.Hi[0] &&
		j >= w.Lo[1] && j <= w.Hi[1] &&
		k >= w.Lo[2] && k <= w.Hi[2]
}

// Index is the linear storage position of (i,j,k); the caller guarantees Contains
func (w Window) Index(i, j, k int) int {
	d := w.Dims()
	return (i - w.Lo[0]) + d[0]*((j-w.Lo[1])+d[1]*(k-w.Lo[2]))
}

// Each visits every index of the window in storage order
func (w Window) Each(fn func(i, j, k int)) {
	for k := w.Lo[2]; k <= w.Hi[2]; k++ {
		for j := w.Lo[1]; j <= w.Hi[1]; j++ {
			for i := w.Lo[0]; i <= w.Hi[0]; i++ {
				fn(i, j, k)
			}
		}
	}
}

// ConstantAxes lists the axes along which the window is a single index
func (w Window) ConstantAxes() (axes []int) {
	for n := 0; n < 3; n++ {
		if w.Lo[n] == w.Hi[n] {
			axes = append(axes, n)
		}
	}
	return
}

// Scale divides every bound by f, failing when a bound is not an exact multiple
func (w Window) Scale(f int) (ws Window, err error) {
	for n := 0; n < 3; n++ {
		if w.Lo[n]%f != 0 || w.Hi[n]%f != 0 {
			err = fmt.Errorf("index range %d:%d on axis %d is not divisible by %d",
				w.Lo[n], w.Hi[n], n, f)
			return
		}
		ws.Lo[n], ws.Hi[n] = w.Lo[n]/f, w.Hi[n]/f
	}
	return
}

func (w Window) String() string {
	return fmt.Sprintf("%d:%d,%d:%d,%d:%d",
		w.Lo[0], w.Hi[0], w.Lo[1], w.Hi[1], w.Lo[2], w.Hi[2])
}

/*
ParseBox reads a box token of three comma separated spans, one per axis:

	"0:8,0:4,4"  = i from 0 to 8, j from 0 to 4, k fixed at 4

A span is "lo:hi" or a single index "n" meaning n:n. Bounds are inclusive.
*/
func ParseBox(token string) (w Window, err error) {
	spans := strings.Split(strings.TrimSpace(token), ",")
	if len(spans) != 3 {
		err = fmt.Errorf("index box %q must have three comma separated spans", token)
		return
	}
	for n, span := range spans {
		if w.Lo[n], w.Hi[n], err = parseSpan(span); err != nil {
			err = fmt.Errorf("index box %q: %w", token, err)
			return
		}
	}
	return
}

func parseSpan(span string) (i1, i2 int, err error) {
	var (
		splits = strings.Split(strings.TrimSpace(span), ":")
	)
	if len(splits) > 2 {
		err = fmt.Errorf("span %q has more than one ':'", span)
		return
	}
	if i1, err = strconv.Atoi(strings.TrimSpace(splits[0])); err != nil {
		return
	}
	if len(splits) == 1 {
		i2 = i1
		return
	}
	if i2, err = strconv.Atoi(strings.TrimSpace(splits[1])); err != nil {
		return
	}
	if i2 < i1 {
		i1, i2 = i2, i1
	}
	return
}
