// Package regkey provides read-only, resource-tracked navigation over a
// hierarchical key/value store such as the Windows registry, an offline hive
// file, or a snapshot database.
//
// # Overview
//
// A Manager owns every backend handle opened through it. Opening a root
// returns a *Node; every further navigation step (OpenSubKey, Children,
// SubKeys, Leafs, Branches) opens more handles that register with the same
// Manager. Teardown closes all of them in reverse acquisition order, exactly
// once, no matter how much of the tree was explored or how early a caller
// stopped consuming an iterator.
//
//	b, _ := hivefile.Open("SOFTWARE", hivefile.Options{MountPoint: `HKLM\SOFTWARE`})
//	defer b.Close()
//
//	m := regkey.NewManager(b)
//	defer m.Teardown()
//
//	root, err := m.Open(`Microsoft\Windows NT\CurrentVersion`)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(root.StringValue("ProductName"))
//
//	it := root.SubKeys()
//	for it.Next() {
//	    fmt.Println(it.Node().NodeName())
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
//
// # Naming
//
// Name is the fully qualified path reported by the backend. NodeName is the
// path relative to the logical root of the call that produced the node: a
// node three levels below the node SubKeys was called on reports a
// three-segment NodeName, not just its own segment.
//
// # Values
//
// Value reads are fail-soft. GetValue, StringValue, ByteValue and friends
// return the supplied default when the value is missing, has another type,
// or the backend fails. Use Value for the strict form.
//
// # Lifetime
//
// Nodes are views; they are owned collectively by their Manager. After
// Teardown every backend-touching method on an old node returns
// types.ErrUseAfterTeardown. A Manager is single-owner and not safe for
// concurrent use.
package regkey
