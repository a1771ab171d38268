// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/cockroachdb/redact"
	"github.com/lib/pq/oid"
)

// Commutator and negator links are kept symmetric: when A names B as
// its commutator, B names A. Links are always made through row ids and
// every row is fetched from the transaction right before it is
// patched, so that a row linked to itself is never patched from a stale
// copy.
//
// A link to an operator that does not exist yet is kept on the row as
// a pending name reference. It is completed when an operator with that
// name and the matching argument types is created.

type linkKind int

const (
	commutatorLink linkKind = iota
	negatorLink
)

func (k linkKind) String() string {
	if k == commutatorLink {
		return "commutator"
	}
	return "negator"
}

// SafeValue implements redact.SafeValue.
func (linkKind) SafeValue() {}

var _ redact.SafeValue = commutatorLink

func (k linkKind) get(op *oprdesc.Operator) oid.Oid {
	if k == commutatorLink {
		return op.Commutator
	}
	return op.Negator
}

func (k linkKind) pending(op *oprdesc.Operator) *oprdesc.NameRef {
	if k == commutatorLink {
		return op.PendingCommutator
	}
	return op.PendingNegator
}

// pendingTypes returns the argument types op expects of the target of
// its pending link.
func (k linkKind) pendingTypes(op *oprdesc.Operator) (left, right oid.Oid) {
	if k == commutatorLink {
		return op.Right, op.Left
	}
	return op.Left, op.Right
}

func (k linkKind) set(id oid.Oid) oprdesc.Patch {
	if k == commutatorLink {
		return oprdesc.Patch{Commutator: oprdesc.OidPtr(id)}
	}
	return oprdesc.Patch{Negator: oprdesc.OidPtr(id)}
}

// complete points a link of kind k at id and clears the pending
// reference it replaces.
func (k linkKind) complete(id oid.Oid) oprdesc.Patch {
	if k == commutatorLink {
		return oprdesc.Patch{Commutator: oprdesc.OidPtr(id), ClearPendingCommutator: true}
	}
	return oprdesc.Patch{Negator: oprdesc.OidPtr(id), ClearPendingNegator: true}
}

// linkTargets are the commutator and negator of a new operator,
// resolved before its row is written.
type linkTargets struct {
	selfCommutator    bool
	commutator        oid.Oid
	negator           oid.Oid
	pendingCommutator *oprdesc.NameRef
	pendingNegator    *oprdesc.NameRef
}

// resolveLinks resolves the commutator and negator names of op. A
// commutator has the argument types of op swapped, a negator the same
// ones. Names are resolved to a schema the same way the operator's own
// name is.
func (p *runParams) resolveLinks(
	op *oprdesc.Operator, commutator, negator *tree.ObjectName,
) (linkTargets, error) {
	var l linkTargets
	own := op.Signature()
	if commutator != nil {
		c := own.Commuted()
		sig, sc, err := p.linkSignature(*commutator, c.Left, c.Right)
		if err != nil {
			return l, err
		}
		if sig == own {
			l.selfCommutator = true
		} else if l.commutator, l.pendingCommutator, err = p.lookupLink(op, sig, sc); err != nil {
			return l, err
		}
	}
	if negator != nil {
		sig, sc, err := p.linkSignature(*negator, op.Left, op.Right)
		if err != nil {
			return l, err
		}
		if sig == own {
			return l, invalidDefinition("operator cannot be its own negator")
		}
		if l.negator, l.pendingNegator, err = p.lookupLink(op, sig, sc); err != nil {
			return l, err
		}
	}
	return l, nil
}

func (p *runParams) linkSignature(
	name tree.ObjectName, left, right oid.Oid,
) (oprdesc.Signature, *catalog.SchemaDescriptor, error) {
	sc, err := p.creationSchema(name)
	if err != nil {
		return oprdesc.Signature{}, nil, err
	}
	return oprdesc.Signature{NamespaceID: sc.ID, Name: name.Name, Left: left, Right: right}, sc, nil
}

// lookupLink returns the id of the operator with signature sig, or a
// pending reference to it if it does not exist. A pending reference
// into another schema amounts to creating there, so it requires the
// same privilege.
func (p *runParams) lookupLink(
	op *oprdesc.Operator, sig oprdesc.Signature, sc *catalog.SchemaDescriptor,
) (oid.Oid, *oprdesc.NameRef, error) {
	other, err := p.txn.LookupBySignature(p.ctx, sig)
	if err != nil {
		return catalog.InvalidOid, nil, err
	}
	if other != nil {
		return other.ID, nil, nil
	}
	if err := validateOperatorName(sig.Name); err != nil {
		return catalog.InvalidOid, nil, err
	}
	if sc.ID != op.NamespaceID {
		if err := p.checkCreate(sc); err != nil {
			return catalog.InvalidOid, nil, err
		}
	}
	ref := sig.Ref()
	return catalog.InvalidOid, &ref, nil
}

// makeOperatorLinks runs after the row of op has been inserted. It
// points the existing commutator and negator back at op, records them
// on op, and then completes the pending references other rows hold to
// op.
func (p *runParams) makeOperatorLinks(op *oprdesc.Operator, l linkTargets) error {
	x := op.ID
	var self oprdesc.Patch
	switch {
	case l.selfCommutator:
		self.Commutator = oprdesc.OidPtr(x)
	case l.commutator != catalog.InvalidOid:
		if err := p.linkBack(commutatorLink, l.commutator, op); err != nil {
			return err
		}
		self.Commutator = oprdesc.OidPtr(l.commutator)
	}
	if l.negator != catalog.InvalidOid {
		if err := p.linkBack(negatorLink, l.negator, op); err != nil {
			return err
		}
		self.Negator = oprdesc.OidPtr(l.negator)
	}
	if !self.IsEmpty() {
		if err := p.txn.PatchRow(p.ctx, x, self); err != nil {
			return err
		}
	}
	return p.completePendingLinks(x)
}

// linkBack makes the row other point at x through a link of kind k. A
// pending reference of that kind on other must name x, and is
// completed.
func (p *runParams) linkBack(k linkKind, other oid.Oid, x *oprdesc.Operator) error {
	y, err := p.mustFetch(other)
	if err != nil {
		return err
	}
	switch cur := k.get(y); cur {
	case x.ID:
		return nil
	case catalog.InvalidOid:
	default:
		return p.alreadyLinkedError(k, y, p.formatOperatorID(cur))
	}
	patch := k.set(x.ID)
	if ref := k.pending(y); ref != nil {
		if *ref != x.Signature().Ref() {
			left, right := k.pendingTypes(y)
			return p.alreadyLinkedError(k, y, p.formatSignature(p.formatNameRef(*ref), left, right))
		}
		patch = k.complete(x.ID)
	}
	if k == negatorLink && y.Result != oid.T_bool {
		return sqlerrors.NewInvalidObjectDefinitionError(pgcode.InvalidFunctionDefinition,
			"negator operator %s must return type boolean", p.operatorString(y))
	}
	return p.txn.PatchRow(p.ctx, y.ID, patch)
}

func (p *runParams) alreadyLinkedError(k linkKind, y *oprdesc.Operator, holder string) error {
	return sqlerrors.NewInvalidObjectDefinitionError(pgcode.InvalidFunctionDefinition,
		"%s operator %s is already the %s of operator %s", k, p.operatorString(y), k, holder)
}

// completePendingLinks links the just created operator x to every row
// holding a pending reference that it satisfies. When x already holds a
// link of that kind to another operator, or a pending one, the holder
// cannot be linked and the statement fails.
func (p *runParams) completePendingLinks(x oid.Oid) error {
	op, err := p.mustFetch(x)
	if err != nil {
		return err
	}
	ref := op.Signature().Ref()
	return p.txn.ScanPendingReferences(p.ctx, ref, func(w *oprdesc.Operator) error {
		if w.ID == x {
			return nil
		}
		cur, err := p.mustFetch(x)
		if err != nil {
			return err
		}
		var patch, self oprdesc.Patch
		if w.PendingCommutator != nil && *w.PendingCommutator == ref &&
			w.Left == op.Right && w.Right == op.Left {
			if err := p.checkLinkFree(commutatorLink, cur, w.ID); err != nil {
				return err
			}
			patch = patch.Merge(commutatorLink.complete(x))
			if cur.Commutator == catalog.InvalidOid {
				self = self.Merge(commutatorLink.set(w.ID))
			}
		}
		if w.PendingNegator != nil && *w.PendingNegator == ref &&
			w.Left == op.Left && w.Right == op.Right && op.Result == oid.T_bool {
			if err := p.checkLinkFree(negatorLink, cur, w.ID); err != nil {
				return err
			}
			patch = patch.Merge(negatorLink.complete(x))
			if cur.Negator == catalog.InvalidOid {
				self = self.Merge(negatorLink.set(w.ID))
			}
		}
		if patch.IsEmpty() {
			return nil
		}
		log.VEventf(p.ctx, 2, "completing pending links of operator %d to %d", w.ID, x)
		if err := p.txn.PatchRow(p.ctx, w.ID, patch); err != nil {
			return err
		}
		if self.IsEmpty() {
			return nil
		}
		return p.txn.PatchRow(p.ctx, x, self)
	})
}

// checkLinkFree returns an error unless x can take w as its link of
// kind k: x must either hold no link of that kind, resolved or pending,
// or already point at w.
func (p *runParams) checkLinkFree(k linkKind, x *oprdesc.Operator, w oid.Oid) error {
	if ref := k.pending(x); ref != nil {
		left, right := k.pendingTypes(x)
		return p.alreadyLinkedError(k, x, p.formatSignature(p.formatNameRef(*ref), left, right))
	}
	if cur := k.get(x); cur != catalog.InvalidOid && cur != w {
		return p.alreadyLinkedError(k, x, p.formatOperatorID(cur))
	}
	return nil
}

// removeOperator deletes the operator row with the given id after
// clearing the links other rows hold to it. It returns the deleted row.
func (p *runParams) removeOperator(id oid.Oid) (*oprdesc.Operator, error) {
	op, err := p.txn.FetchForUpdate(p.ctx, id)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, sqlerrors.NewUndefinedOperatorIDError(uint32(id))
	}
	if op.Commutator != catalog.InvalidOid || op.Negator != catalog.InvalidOid {
		if err := p.clearLinksTo(id, op.Commutator, op.Negator); err != nil {
			return nil, err
		}
		// A self-commutator was just patched; the copy in hand is stale.
		if op.Commutator == id || op.Negator == id {
			if op, err = p.mustFetch(id); err != nil {
				return nil, err
			}
		}
	}
	if err := p.txn.DeleteDependencies(p.ctx, id); err != nil {
		return nil, err
	}
	if err := p.txn.DeleteRow(p.ctx, op.ID); err != nil {
		return nil, err
	}
	log.VEventf(p.ctx, 2, "removed operator %d", id)
	return op, nil
}

// clearLinksTo resets the commutator and negator fields that still
// point at id on the rows id links to. A target that is missing, or
// that points elsewhere, is left alone.
func (p *runParams) clearLinksTo(id, commutator, negator oid.Oid) error {
	for _, l := range []struct {
		kind   linkKind
		target oid.Oid
	}{
		{commutatorLink, commutator},
		{negatorLink, negator},
	} {
		if l.target == catalog.InvalidOid {
			continue
		}
		other, err := p.txn.FetchForUpdate(p.ctx, l.target)
		if err != nil {
			return err
		}
		if other == nil || l.kind.get(other) != id {
			continue
		}
		if err := p.txn.PatchRow(p.ctx, other.ID, l.kind.set(catalog.InvalidOid)); err != nil {
			return err
		}
	}
	return nil
}

// formatNameRef renders a pending reference as a qualified name.
func (p *runParams) formatNameRef(ref oprdesc.NameRef) string {
	name := tree.MakeUnqualifiedName(ref.Name)
	if sc, err := p.cfg.Schemas.GetSchemaByID(p.ctx, ref.NamespaceID); err == nil && sc != nil {
		name.Schema = sc.Name
	}
	return name.String()
}

// formatOperatorID renders the operator with the given id, or its id
// if the row is gone.
func (p *runParams) formatOperatorID(id oid.Oid) string {
	if op, err := p.txn.FetchForUpdate(p.ctx, id); err == nil && op != nil {
		return p.operatorString(op)
	}
	return redact.Sprint(id).StripMarkers()
}
