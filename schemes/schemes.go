// Package schemes registers every group-signature scheme in this module.
// Blank-import it to resolve containers of any scheme through the registry:
//
//	import _ "github.com/gsig/groupsig/schemes"
//
// Programs that only need specific schemes can import those packages
// directly instead.
package schemes

import (
	_ "github.com/gsig/groupsig/bbs04"
	_ "github.com/gsig/groupsig/cpy06"
	_ "github.com/gsig/groupsig/dl21"
	_ "github.com/gsig/groupsig/dl21seq"
	_ "github.com/gsig/groupsig/gl19"
	_ "github.com/gsig/groupsig/klap20"
	_ "github.com/gsig/groupsig/ps16"
)
