package audio

import (
	"math"
	"math/cmplx"
	"sync"
)

var fft = NewFFT(fftSize)

// fftMu guards fft's work buffer, shared by every Audio.
var fftMu sync.Mutex

// FFT is an in-place radix-2 transform for one fixed power-of-two length.
type FFT struct {
	size    int
	reverse []int
	twiddle []complex128
	work    []complex128
}

// NewFFT panics unless size is a power of two.
func NewFFT(size int) *FFT {
	if size <= 0 || size&(size-1) != 0 {
		panic("fft size should be a power of two")
	}
	f := &FFT{
		size:    size,
		reverse: make([]int, size),
		twiddle: make([]complex128, size/2),
		work:    make([]complex128, size),
	}
	for i := range f.reverse {
		f.reverse[i] = bitReverse(i, size)
	}
	for i := range f.twiddle {
		f.twiddle[i] = cmplx.Rect(1, -2*math.Pi*float64(i)/float64(size))
	}
	return f
}

func bitReverse(k, n int) int {
	m := 0
	for ; n > 1; n >>= 1 {
		m = m<<1 | k&1
		k >>= 1
	}
	return m
}

// Transform runs the forward transform over x, whose length must be the
// size given to NewFFT.
func (f *FFT) Transform(x []complex128) {
	if len(x) != f.size {
		panic("fft input length mismatch")
	}
	for i, rev := range f.reverse {
		if i < rev {
			x[i], x[rev] = x[rev], x[i]
		}
	}
	for half := 1; half < f.size; half <<= 1 {
		stride := f.size / (half << 1)
		for start := 0; start < f.size; start += half << 1 {
			for k := 0; k < half; k++ {
				t := f.twiddle[k*stride] * x[start+k+half]
				x[start+k+half] = x[start+k] - t
				x[start+k] += t
			}
		}
	}
}

// CalcReal replaces x with the real part of its spectrum.
func (f *FFT) CalcReal(x []float64) {
	f.load(x)
	for i, c := range f.work {
		x[i] = real(c)
	}
}

// CalcAbs replaces x with the magnitude of its spectrum.
func (f *FFT) CalcAbs(x []float64) {
	f.load(x)
	for i, c := range f.work {
		x[i] = cmplx.Abs(c)
	}
}

func (f *FFT) load(x []float64) {
	for i, v := range x {
		f.work[i] = complex(v, 0)
	}
	f.Transform(f.work)
}

// Hann applies a Hann window in place.
func Hann(data []float64) {
	n := float64(len(data))
	for i := range data {
		data[i] *= 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/n)
	}
}
