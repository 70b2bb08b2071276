// Package pathtemplate renders path templates such as
//
//	/users/{user?lc}/repos/{repo}/blob/{path?slashok}
//
// A template is compiled once into an immutable Template and rendered with a
// map of variable values. Placeholders may carry one modifier after '?':
//
//	uc, lc              upper or lower case the whole value
//	ucfirst, lcfirst    upper or lower case the first character
//	slashok             allow '/' inside the value
//	emptycollapse       drop the segment entirely when the value is empty
//
// A placeholder written as {name#tag} repeats the variable name, so the same
// value can appear several times with different modifiers:
//
//	{b}/{b#again}/{b#upper?uc}   with b=value   renders   value/value/VALUE
//
// Compilation rejects templates that start with "//", end with "/" or carry
// more than one modifier on a placeholder. Rendering fails when a placeholder
// has no value or when a value would introduce an extra path separator.
// Both failures are reported as *Error, classified by Kind.
package pathtemplate
