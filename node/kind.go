package node

type DispatcherEnum int

const (
	DispatcherUnknown DispatcherEnum = iota
	DispatcherPrimitive
	DispatcherBytes
	DispatcherTime
	DispatcherDuration
	DispatcherEnumeration
	DispatcherText
	DispatcherVariant
	DispatcherTuple
	DispatcherOptional
	DispatcherArray
	DispatcherSlice
	DispatcherMap
	DispatcherStruct
	DispatcherInterface

	// DispatcherTotal is a constant that represents the total number of kinds defined
	DispatcherTotal = int(iota)
)
