package badger

import "github.com/poiesic/newsvec/storage"

// Documents are stored under doc:{bucket}.{scope}.{collection}:{key}, so
// several keyspaces can share one database.
const documentPrefix = "doc"

// makeCollectionPrefix returns the key prefix shared by every document of ks.
func makeCollectionPrefix(ks storage.Keyspace) []byte {
	return []byte(documentPrefix + ":" + ks.String() + ":")
}

// makeDocumentKey returns the database key of document key in ks.
func makeDocumentKey(ks storage.Keyspace, key string) []byte {
	return append(makeCollectionPrefix(ks), key...)
}

// documentKeyFrom strips the collection prefix from a database key.
func documentKeyFrom(ks storage.Keyspace, dbKey []byte) string {
	return string(dbKey[len(makeCollectionPrefix(ks)):])
}
