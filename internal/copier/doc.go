// Package copier copies directory trees with per-file progress.
//
// [Tree] returns an iterator that performs the copy as it is ranged over,
// yielding one [Progress] value after every copied file:
//
//	for p, err := range copier.Tree(src, dst) {
//	    if err != nil {
//	        return err // dst is left partially populated
//	    }
//	    fmt.Printf("\rProgress: [%d%%]", p.Percent)
//	}
//
// The destination must not exist. Regular files keep their permission bits
// and modification time, directories are recreated with the source's
// permissions and times, and symlinks are recreated rather than followed.
// A failed copy is never cleaned up here; callers decide what to do with
// the partial destination.
package copier
