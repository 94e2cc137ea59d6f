// Command regnav browses Windows registry data (offline hive files, bbolt
// snapshots, the live registry on Windows, or a built-in demo tree) through
// the regkey handle manager.
package main

func main() {
	execute()
}
