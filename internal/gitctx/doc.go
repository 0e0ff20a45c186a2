// Package gitctx shells out to git for the small amount of repository
// context codelens needs: the root, HEAD and branch of the reviewed tree, and
// committing the generated report back to the repository.
//
// All functions take the working directory explicitly and never change the
// process's current directory. A tree that is not a git repository is not an
// error for [GetRepoMeta]; it simply yields empty metadata.
package gitctx
