// Package lv2 discovers LV2 plugins and answers questions about them.
//
// A World loads bundles from the LV2 search path into an in-memory
// statement store, keeps one Plugin per plugin URI and reads each
// plugin's full description only when an accessor needs it:
//
//	world := lv2.New(lv2.OptLV2Path("/usr/lib/lv2"))
//	defer world.Close()
//	world.LoadAll()
//	for p := range world.Plugins().All() {
//		fmt.Println(p.URI(), p.Name(), p.NumPorts())
//	}
//
// String values are chosen by the World language, taken from LANG unless
// set with OptLang. Plugin binaries are opened through a LibraryOpener;
// the default one loads Go plugins.
package lv2
