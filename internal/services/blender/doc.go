// Package blender drives the 3-D renderer subprocess: version and GPU
// probes, and the blocking render invocation with frame progress parsing.
package blender
