// Package mongo connects to MongoDB with environment driven settings and a
// retrying dial. The document store (pkg/docstore) runs on top of the
// returned database.
//
//	client, db, err := mongo.Connect(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(context.Background())
//	store := docstore.NewMongoStore(db, "documents")
package mongo
