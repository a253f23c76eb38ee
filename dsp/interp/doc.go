// Package interp provides curve interpolation for resampling a magnitude
// curve onto another frequency grid.
//
//   - [Linear2]:   2-point linear interpolation between neighbors
//   - [Linear]:    piecewise-linear interpolation over a tabulated curve,
//     extrapolated linearly from the end segments
package interp
