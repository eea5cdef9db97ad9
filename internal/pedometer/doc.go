// Package pedometer infers a step count from desktop input activity.
//
// Every pointer move longer than the movement threshold, and every key press,
// is a qualifying event. A fixed number of qualifying events makes one step.
// This is a proxy for physical activity, not a measurement of it.
package pedometer
