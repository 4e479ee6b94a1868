// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package typeinfo classifies the Go values found in a variable environment. As
much as possible, reflection code is limited to this package. The
classification decides how a value is written into SQL text: quoted as a
string, written as a number, written verbatim, or expanded as a list.
*/
package typeinfo
