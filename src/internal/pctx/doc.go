// Package pctx creates the contexts idxconvert passes around.
//
// A context from this package carries a logger (see package log).  Commands get their root context
// from Background and hand named children to the phases they run:
//
//	ctx := pctx.Background("idxconvert")
//	labels, err := readLabels(pctx.Child(ctx, "labels"), path)
//
// The convention is to use oneCamelCaseWord for the name, and for parents to name their children.
// Names nest with dots, so a record from the image writer of a conversion shows up as
// "idxconvert.convert.write".
package pctx
