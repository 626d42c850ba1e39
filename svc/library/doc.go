// Package library keeps the per-user "saved" and "finished" book sets.
//
// Both sets live in the document store under users/{uid}/library, one
// document per set with a bookIds array field. Writes are set-union and
// set-remove, so repeating an operation never changes the result:
//
//	lib := library.NewGateway(store)
//	_ = lib.Save(ctx, uid, "book42")
//	_ = lib.Save(ctx, uid, "book42") // still one entry
//	saved, _ := lib.IsSaved(ctx, uid, "book42")
package library
