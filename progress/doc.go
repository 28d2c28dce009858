// Package progress blends the conversion-phase and engine-phase progress
// fractions of a slicing run into one monotonic observable stream.
//
// The two phases are independently paced: conversion runs first (and is
// skipped entirely for canonical-format inputs), then the engine's blocking
// invocation re-enters the host with raw fractions at arbitrary granularity.
// The Blender weighs the phases, rounds to two decimal places, deduplicates,
// and clamps the result non-decreasing before delivering it through a
// single-slot subscription.
package progress
