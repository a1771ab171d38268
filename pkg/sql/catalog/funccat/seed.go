// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package funccat

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/privilege"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/lib/pq/oid"
	"gopkg.in/yaml.v3"
)

// Seed describes user objects to add on top of the builtins. It is
// read from YAML:
//
//	schemas:
//	  - name: geo
//	    owner: alice
//	functions:
//	  - name: geo.box_eq
//	    args: [int4, int4]
//	    returns: bool
//	grants:
//	  - on: schema
//	    object: geo
//	    to: bob
//	    privileges: [create]
//	roles:
//	  - role: admin
//	    members: [carol]
type Seed struct {
	Schemas   []SeedSchema   `yaml:"schemas"`
	Types     []SeedType     `yaml:"types"`
	Functions []SeedFunction `yaml:"functions"`
	Grants    []SeedGrant    `yaml:"grants"`
	Roles     []SeedRole     `yaml:"roles"`
}

// SeedSchema declares a schema.
type SeedSchema struct {
	Name  string `yaml:"name"`
	Owner string `yaml:"owner"`
}

// SeedType declares a type. Name may be schema-qualified and defaults
// to the public schema.
type SeedType struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	// Private withholds the default USAGE grant to public.
	Private bool `yaml:"private"`
}

// SeedFunction declares a function overload. Arg and return types are
// resolved with the default search path.
type SeedFunction struct {
	Name    string   `yaml:"name"`
	Args    []string `yaml:"args"`
	Returns string   `yaml:"returns"`
	SetOf   bool     `yaml:"setof"`
	Owner   string   `yaml:"owner"`
	// Private withholds the default EXECUTE grant to public.
	Private bool `yaml:"private"`
}

// SeedGrant grants privileges on one object. For functions, Object is
// name(argtypes) with the arg types spelled as in Args.
type SeedGrant struct {
	On         string   `yaml:"on"`
	Object     string   `yaml:"object"`
	To         string   `yaml:"to"`
	Privileges []string `yaml:"privileges"`
}

// SeedRole adds members to a role.
type SeedRole struct {
	Role    string   `yaml:"role"`
	Members []string `yaml:"members"`
}

// LoadSeed decodes a Seed. Unknown fields are rejected.
func LoadSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Seed
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, errors.Wrap(err, "decoding catalog seed")
	}
	return &s, nil
}

func parseUser(s string) (username.SQLUsername, error) {
	if s == "" {
		return username.RootUserName(), nil
	}
	return username.MakeSQLUsernameFromUserInput(s)
}

// Apply adds the seed's objects to c and its grants to g.
func (s *Seed) Apply(ctx context.Context, c *Catalog, g *privilege.Grants) error {
	for _, sc := range s.Schemas {
		owner, err := parseUser(sc.Owner)
		if err != nil {
			return err
		}
		d, err := c.AddSchema(catalog.InvalidOid, sc.Name, owner)
		if err != nil {
			return err
		}
		if err := g.Grant(privilege.Schema, d.ID, owner, privilege.ALL); err != nil {
			return err
		}
	}
	for _, t := range s.Types {
		n := tree.ParseObjectName(t.Name)
		schemaID, err := c.schemaIDForSeed(ctx, n)
		if err != nil {
			return err
		}
		d, err := c.AddType(catalog.InvalidOid, schemaID, n.Name, t.Aliases...)
		if err != nil {
			return errors.Wrapf(err, "adding type %s", t.Name)
		}
		if !t.Private {
			if err := g.Grant(privilege.Type, d.ID, username.PublicRoleName(), privilege.USAGE); err != nil {
				return err
			}
		}
	}
	for _, f := range s.Functions {
		if err := c.applySeedFunction(ctx, f, g); err != nil {
			return errors.Wrapf(err, "adding function %s", f.Name)
		}
	}
	for _, r := range s.Roles {
		role, err := parseUser(r.Role)
		if err != nil {
			return err
		}
		for _, m := range r.Members {
			member, err := parseUser(m)
			if err != nil {
				return err
			}
			g.GrantRole(role, member)
		}
	}
	for _, gr := range s.Grants {
		if err := c.applySeedGrant(ctx, gr, g); err != nil {
			return errors.Wrapf(err, "granting on %s %s", gr.On, gr.Object)
		}
	}
	return nil
}

func (c *Catalog) schemaIDForSeed(ctx context.Context, n tree.ObjectName) (oid.Oid, error) {
	if !n.ExplicitSchema() {
		return PublicSchemaID, nil
	}
	sc, err := c.GetSchemaByName(ctx, n.Schema)
	if err != nil {
		return catalog.InvalidOid, err
	}
	if sc == nil {
		return catalog.InvalidOid, errors.Newf("schema %q does not exist", n.Schema)
	}
	return sc.ID, nil
}

func (c *Catalog) resolveSeedTypes(ctx context.Context, names []string) ([]oid.Oid, error) {
	res := make([]oid.Oid, len(names))
	for i, n := range names {
		d, err := c.ResolveType(ctx, tree.NewTypeName(n), sessiondata.DefaultSearchPath)
		if err != nil {
			return nil, err
		}
		res[i] = d.ID
	}
	return res, nil
}

func (c *Catalog) applySeedFunction(ctx context.Context, f SeedFunction, g *privilege.Grants) error {
	n := tree.ParseObjectName(f.Name)
	schemaID, err := c.schemaIDForSeed(ctx, n)
	if err != nil {
		return err
	}
	params, err := c.resolveSeedTypes(ctx, f.Args)
	if err != nil {
		return err
	}
	ret, err := c.resolveSeedTypes(ctx, []string{f.Returns})
	if err != nil {
		return err
	}
	owner, err := parseUser(f.Owner)
	if err != nil {
		return err
	}
	d, err := c.AddFunction(catalog.FunctionDescriptor{
		SchemaID:   schemaID,
		Name:       n.Name,
		Params:     params,
		ReturnType: ret[0],
		ReturnSet:  f.SetOf,
		Owner:      owner,
	})
	if err != nil {
		return err
	}
	if !f.Private {
		return g.Grant(privilege.Function, d.ID, username.PublicRoleName(), privilege.EXECUTE)
	}
	return nil
}

func (c *Catalog) applySeedGrant(ctx context.Context, gr SeedGrant, g *privilege.Grants) error {
	objType, err := privilege.ObjectTypeFromString(gr.On)
	if err != nil {
		return err
	}
	grantee, err := parseUser(gr.To)
	if err != nil {
		return err
	}
	privs := make([]privilege.Kind, len(gr.Privileges))
	for i, p := range gr.Privileges {
		if privs[i], err = privilege.KindFromString(p); err != nil {
			return err
		}
	}
	var id oid.Oid
	switch objType {
	case privilege.Schema:
		sc, err := c.GetSchemaByName(ctx, gr.Object)
		if err != nil {
			return err
		}
		if sc == nil {
			return errors.Newf("schema %q does not exist", gr.Object)
		}
		id = sc.ID
	case privilege.Type:
		d, err := c.ResolveType(ctx, tree.ParseTypeName(gr.Object), sessiondata.DefaultSearchPath)
		if err != nil {
			return err
		}
		id = d.ID
	case privilege.Function:
		if id, err = c.lookupSeedFunction(ctx, gr.Object); err != nil {
			return err
		}
	}
	return g.Grant(objType, id, grantee, privs...)
}

// lookupSeedFunction resolves "[schema.]name(t1, t2)".
func (c *Catalog) lookupSeedFunction(ctx context.Context, sig string) (oid.Oid, error) {
	name, args, err := splitSignature(sig)
	if err != nil {
		return catalog.InvalidOid, err
	}
	n := tree.ParseObjectName(name)
	schemaID, err := c.schemaIDForSeed(ctx, n)
	if err != nil {
		return catalog.InvalidOid, err
	}
	params, err := c.resolveSeedTypes(ctx, args)
	if err != nil {
		return catalog.InvalidOid, err
	}
	fns, err := c.GetFunctionsByName(ctx, schemaID, n.Name)
	if err != nil {
		return catalog.InvalidOid, err
	}
	for _, f := range fns {
		if f.MatchesParams(params) {
			return f.ID, nil
		}
	}
	return catalog.InvalidOid, errors.Newf("function %s does not exist", sig)
}

func splitSignature(sig string) (name string, args []string, _ error) {
	name, rest, ok := strings.Cut(sig, "(")
	if !ok || !strings.HasSuffix(rest, ")") {
		return "", nil, errors.Newf("expected name(argtypes), got %q", sig)
	}
	inner := strings.TrimSpace(strings.TrimSuffix(rest, ")"))
	if inner == "" {
		return name, nil, nil
	}
	for _, a := range strings.Split(inner, ",") {
		args = append(args, strings.TrimSpace(a))
	}
	return name, args, nil
}
