package lv2

import "errors"

var (
	// ErrInvalidQuery indicates a pattern query with a missing or
	// non-URI predicate, or with neither subject nor object bound.
	ErrInvalidQuery = errors.New("lv2: invalid query")
	// ErrWrongKind indicates a Node of one kind was used as another.
	ErrWrongKind = errors.New("lv2: wrong node kind")
	// ErrNotResource indicates a literal was given where a URI or blank
	// node is required.
	ErrNotResource = errors.New("lv2: node is not a resource")
	// ErrNoLibrary indicates a plugin declares no usable lv2:binary.
	ErrNoLibrary = errors.New("lv2: no plugin library")
	// ErrNoDescriptor indicates a library does not provide the plugin.
	ErrNoDescriptor = errors.New("lv2: no descriptor for plugin")
	// ErrInstantiate indicates a descriptor refused to instantiate.
	ErrInstantiate = errors.New("lv2: instantiation failed")
	// ErrPortsNotConnected indicates Run was called before every
	// mandatory port was connected.
	ErrPortsNotConnected = errors.New("lv2: ports not connected")
	// ErrNotActivated indicates Run was called on an inactive instance.
	ErrNotActivated = errors.New("lv2: instance not activated")
	// ErrUnknownOption indicates SetOption was given an unrecognized URI.
	ErrUnknownOption = errors.New("lv2: unknown option")
	// ErrClosed indicates an operation on a freed Instance, or a load
	// into a World after Close.
	ErrClosed = errors.New("lv2: closed")
)
