// Package profiles owns the analytic light and mass profiles of lens and
// source galaxies.
//
// The set of profiles is closed: each variant is a concrete struct
// implementing a fixed capability interface (MassProfile, LightProfile).
// Composition happens by explicit ownership further up the stack (a galaxy
// owns a list of profiles, a tracer owns galaxies); there is no open-ended
// runtime introspection of profile parameters.
//
// All coordinates are angular (arcseconds) in (y, x) ordering. Profiles with
// a singular centre return non-finite deflections there; callers are expected
// to filter non-finite coordinates rather than rely on the profiles guarding
// against them.
package profiles
