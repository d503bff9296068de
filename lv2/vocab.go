package lv2

import "github.com/geoknoesis/lv2-go/rdf"

// Namespaces of the vocabularies a host reads.
const (
	NSLV2     = "http://lv2plug.in/ns/lv2core#"
	NSRDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSRDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	NSOWL     = "http://www.w3.org/2002/07/owl#"
	NSXSD     = "http://www.w3.org/2001/XMLSchema#"
	NSDOAP    = "http://usefulinc.com/ns/doap#"
	NSFOAF    = "http://xmlns.com/foaf/0.1/"
	NSDC      = "http://purl.org/dc/terms/"
	NSUI      = "http://lv2plug.in/ns/extensions/ui#"
	NSDynMan  = "http://lv2plug.in/ns/ext/dynmanifest#"
	NSEvent   = "http://lv2plug.in/ns/ext/event#"
	NSAtom    = "http://lv2plug.in/ns/ext/atom#"
	NSPresets = "http://lv2plug.in/ns/ext/presets#"
	NSLilv    = "http://drobilla.net/ns/lilv#"
)

// Well-known LV2 classes and properties.
const (
	URIPlugin             = NSLV2 + "Plugin"
	URIPluginBase         = NSLV2 + "PluginBase"
	URISpecification      = NSLV2 + "Specification"
	URIPort               = NSLV2 + "Port"
	URIInputPort          = NSLV2 + "InputPort"
	URIOutputPort         = NSLV2 + "OutputPort"
	URIControlPort        = NSLV2 + "ControlPort"
	URIAudioPort          = NSLV2 + "AudioPort"
	URICVPort             = NSLV2 + "CVPort"
	URILatency            = NSLV2 + "latency"
	URIReportsLatency     = NSLV2 + "reportsLatency"
	URIConnectionOptional = NSLV2 + "connectionOptional"
	URIBinary             = NSLV2 + "binary"
	URIPortProp           = NSLV2 + "port"
	URIIndex              = NSLV2 + "index"
	URISymbol             = NSLV2 + "symbol"
	URIName               = NSLV2 + "name"
	URIDefault            = NSLV2 + "default"
	URIMinimum            = NSLV2 + "minimum"
	URIMaximum            = NSLV2 + "maximum"
	URIScalePoint         = NSLV2 + "scalePoint"
	URIPortProperty       = NSLV2 + "portProperty"
	URIDesignation        = NSLV2 + "designation"
	URIPrototype          = NSLV2 + "prototype"
	URIAppliesTo          = NSLV2 + "appliesTo"
	URIProject            = NSLV2 + "project"
	URIMinorVersion       = NSLV2 + "minorVersion"
	URIMicroVersion       = NSLV2 + "microVersion"
	URIRequiredFeature    = NSLV2 + "requiredFeature"
	URIOptionalFeature    = NSLV2 + "optionalFeature"
	URIExtensionData      = NSLV2 + "extensionData"

	URIRDFType        = NSRDF + "type"
	URIRDFValue       = NSRDF + "value"
	URIRDFSSeeAlso    = NSRDFS + "seeAlso"
	URIRDFSLabel      = NSRDFS + "label"
	URIRDFSSubClass   = NSRDFS + "subClassOf"
	URIRDFSClass      = NSRDFS + "Class"
	URIOWLOntology    = NSOWL + "Ontology"
	URIDoapName       = NSDOAP + "name"
	URIDoapMaintainer = NSDOAP + "maintainer"
	URIFoafName       = NSFOAF + "name"
	URIFoafMbox       = NSFOAF + "mbox"
	URIFoafHomepage   = NSFOAF + "homepage"
	URIDCReplaces     = NSDC + "replaces"
	URIUIUI           = NSUI + "ui"
	URIUIBinary       = NSUI + "binary"
	URIDynManifest    = NSDynMan + "DynManifest"
	URISupportsEvent  = NSEvent + "supportsEvent"
	URIAtomSupports   = NSAtom + "supports"
	URIPreset         = NSPresets + "Preset"
)

// World option URIs accepted by SetOption.
const (
	OptionDynManifest = NSLilv + "dyn-manifest"
	OptionLang        = NSLilv + "lang"
	OptionFilterLang  = NSLilv + "filter-lang"
	OptionLV2Path     = NSLilv + "lv2-path"
)

// uris holds the terms the World matches against on every query, built
// once per World.
type uris struct {
	rdfType, rdfValue                               rdf.IRI
	rdfsSeeAlso, rdfsLabel, rdfsSubClass, rdfsClass rdf.IRI
	owlOntology                                     rdf.IRI
	lv2Plugin, lv2PluginBase, lv2Specification      rdf.IRI
	lv2Binary, lv2Port, lv2Index, lv2Symbol         rdf.IRI
	lv2Name, lv2Default, lv2Minimum, lv2Maximum     rdf.IRI
	lv2ScalePoint, lv2PortProperty                  rdf.IRI
	lv2Designation, lv2Prototype, lv2AppliesTo      rdf.IRI
	lv2Project, lv2MinorVersion, lv2MicroVersion    rdf.IRI
	lv2RequiredFeature, lv2OptionalFeature          rdf.IRI
	lv2ExtensionData, lv2ReportsLatency             rdf.IRI
	doapName, doapMaintainer                        rdf.IRI
	dcReplaces                                      rdf.IRI
	uiUI, uiBinary                                  rdf.IRI
	dynManifest                                     rdf.IRI
	supportsEvent, atomSupports                     rdf.IRI
}

func newURIs() uris {
	i := func(s string) rdf.IRI { return rdf.IRI{Value: s} }
	return uris{
		rdfType:            i(URIRDFType),
		rdfValue:           i(URIRDFValue),
		rdfsSeeAlso:        i(URIRDFSSeeAlso),
		rdfsLabel:          i(URIRDFSLabel),
		rdfsSubClass:       i(URIRDFSSubClass),
		rdfsClass:          i(URIRDFSClass),
		owlOntology:        i(URIOWLOntology),
		lv2Plugin:          i(URIPlugin),
		lv2PluginBase:      i(URIPluginBase),
		lv2Specification:   i(URISpecification),
		lv2Binary:          i(URIBinary),
		lv2Port:            i(URIPortProp),
		lv2Index:           i(URIIndex),
		lv2Symbol:          i(URISymbol),
		lv2Name:            i(URIName),
		lv2Default:         i(URIDefault),
		lv2Minimum:         i(URIMinimum),
		lv2Maximum:         i(URIMaximum),
		lv2ScalePoint:      i(URIScalePoint),
		lv2PortProperty:    i(URIPortProperty),
		lv2Designation:     i(URIDesignation),
		lv2Prototype:       i(URIPrototype),
		lv2AppliesTo:       i(URIAppliesTo),
		lv2Project:         i(URIProject),
		lv2MinorVersion:    i(URIMinorVersion),
		lv2MicroVersion:    i(URIMicroVersion),
		lv2RequiredFeature: i(URIRequiredFeature),
		lv2OptionalFeature: i(URIOptionalFeature),
		lv2ExtensionData:   i(URIExtensionData),
		lv2ReportsLatency:  i(URIReportsLatency),
		doapName:           i(URIDoapName),
		doapMaintainer:     i(URIDoapMaintainer),
		dcReplaces:         i(URIDCReplaces),
		uiUI:               i(URIUIUI),
		uiBinary:           i(URIUIBinary),
		dynManifest:        i(URIDynManifest),
		supportsEvent:      i(URISupportsEvent),
		atomSupports:       i(URIAtomSupports),
	}
}
