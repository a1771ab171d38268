// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package oprstore

import (
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/util/encoding"
	"github.com/lib/pq/oid"
)

// Key layout:
//
//	/2617/0                                        -> next operator id
//	/2617/1/<id>                                   -> encoded row
//	/2617/2/<namespace>/<name>/<left>/<right>      -> id (unique)
//	/2617/3/<namespace>/<name>/<id>                -> pending reference
//	/2608/1/2617/<id>/<class>/<object>             -> dependency edge
const (
	sequenceIndexID uint32 = 0
	primaryIndexID  uint32 = 1
	nameIndexID     uint32 = 2
	pendingIndexID  uint32 = 3

	dependRelationID uint32 = 2608
	dependIndexID    uint32 = 1
)

// NameIndexName is the name of the unique signature index, reported in
// uniqueness violations.
const NameIndexName = "pg_operator_oprname_l_r_n_index"

func indexPrefix(index uint32) []byte {
	k := encoding.EncodeUint32Ascending(nil, uint32(catalog.OperatorRelationID))
	return encoding.EncodeUint32Ascending(k, index)
}

func sequenceKey() []byte {
	return indexPrefix(sequenceIndexID)
}

func primaryKey(id oid.Oid) []byte {
	return encoding.EncodeUint32Ascending(indexPrefix(primaryIndexID), uint32(id))
}

func decodePrimaryKey(k []byte) (oid.Oid, error) {
	_, id, err := encoding.DecodeUint32Ascending(k[len(indexPrefix(primaryIndexID)):])
	return oid.Oid(id), err
}

func nameKey(sig oprdesc.Signature) []byte {
	k := encoding.EncodeUint32Ascending(indexPrefix(nameIndexID), uint32(sig.NamespaceID))
	k = encoding.EncodeStringAscending(k, sig.Name)
	k = encoding.EncodeUint32Ascending(k, uint32(sig.Left))
	return encoding.EncodeUint32Ascending(k, uint32(sig.Right))
}

func pendingPrefix(ref oprdesc.NameRef) []byte {
	k := encoding.EncodeUint32Ascending(indexPrefix(pendingIndexID), uint32(ref.NamespaceID))
	return encoding.EncodeStringAscending(k, ref.Name)
}

func pendingKey(ref oprdesc.NameRef, id oid.Oid) []byte {
	return encoding.EncodeUint32Ascending(pendingPrefix(ref), uint32(id))
}

func decodePendingKey(ref oprdesc.NameRef, k []byte) (oid.Oid, error) {
	_, id, err := encoding.DecodeUint32Ascending(k[len(pendingPrefix(ref)):])
	return oid.Oid(id), err
}

func depPrefix(id oid.Oid) []byte {
	k := encoding.EncodeUint32Ascending(nil, dependRelationID)
	k = encoding.EncodeUint32Ascending(k, dependIndexID)
	k = encoding.EncodeUint32Ascending(k, uint32(catalog.OperatorRelationID))
	return encoding.EncodeUint32Ascending(k, uint32(id))
}

func depKey(id oid.Oid, d oprdesc.Dependency) []byte {
	k := encoding.EncodeUint32Ascending(depPrefix(id), uint32(d.ClassID))
	return encoding.EncodeUint32Ascending(k, uint32(d.ObjectID))
}

func decodeDepKey(id oid.Oid, k []byte) (oprdesc.Dependency, error) {
	rem, class, err := encoding.DecodeUint32Ascending(k[len(depPrefix(id)):])
	if err != nil {
		return oprdesc.Dependency{}, err
	}
	_, obj, err := encoding.DecodeUint32Ascending(rem)
	return oprdesc.Dependency{ClassID: oid.Oid(class), ObjectID: oid.Oid(obj)}, err
}

// pendingRefs returns the distinct pending references held by op.
func pendingRefs(op *oprdesc.Operator) []oprdesc.NameRef {
	var refs []oprdesc.NameRef
	if op.PendingCommutator != nil {
		refs = append(refs, *op.PendingCommutator)
	}
	if op.PendingNegator != nil && (len(refs) == 0 || refs[0] != *op.PendingNegator) {
		refs = append(refs, *op.PendingNegator)
	}
	return refs
}
