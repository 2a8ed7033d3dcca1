// Package pipeline runs the phase-ordered analysis over a registry.Registry:
// parse, gather-types, resolve-members and expression-tree construction each
// run as a single jobs.Pool.Execute batched parallel-for over the registry's
// files (§4.H/§4.I/§4.J); entry-point discovery runs once over the resolve
// map (§4.K), and the code-gen reachability visitor fans out one job per
// reachable method (§4.L).
//
// Grounded on the teacher's internal/indexing/pipeline.go phase-by-phase
// driver shape (scan -> parse -> extract -> index, each a bounded
// worker-pool stage with a barrier between stages): this package keeps that
// same "one pool, one barrier per stage" structure, generalized from
// indexing files to analyzing a syntax forest.
//
// # Tree-shape convention
//
// The concrete lexer/parser is out of scope (§1); this module owns both
// ends of syntax.Tree, so the convention below is this repository's own,
// used consistently by every phase in this package and by the fixtures
// package tests build with syntax.Builder.
//
// A file's root KindFile node is always at syntax.NodeIndex(1) — the first
// node a Builder adds after its reserved index-0 sentinel.
//
//	KindFile             Child0 = head of using-namespace/using-alias decls (Next-linked)
//	                     Child1 = head of top-level type decls (Next-linked)
//	KindUsingNamespace   Name   = namespace path ("Lib::Collections")
//	KindUsingAlias       Name   = alias name; Child0 = target TypePath
//	KindClassDecl        Name   = type name
//	KindStructDecl       Child0 = generic-parameter list head (KindTypeParameter, Next-linked)
//	KindInterfaceDecl    Child1 = base-type list head (KindTypePath, Next-linked;
//	                              position 0 is the class-base for KindClassDecl)
//	                     Child2 = member decl list head (Field/Property/Indexer/
//	                              Method/Constructor decls, Next-linked)
//	                     Modifiers carries ModExport etc.
//	KindEnumDecl         Child2 = member list (KindFieldDecl reused per enumerator,
//	                              Name = enumerator name)
//	KindDelegateDecl     Child0 = return TypePath; Child1 = parameter list head
//	KindTypeParameter    Name; Next-linked sibling list
//	KindFieldDecl        Name; Child0 = TypePath
//	KindPropertyDecl     Name; Child0 = TypePath; Child1 = getter body KindBlock
//	                              (invalid if no getter); Child2 = setter body
//	                              KindBlock (invalid if no setter) — accessor
//	                              presence is read directly off these, the
//	                              same convention PropertyInfo.GetterNodeIndex/
//	                              SetterNodeIndex mirror (§4.D)
//	KindIndexerDecl      Child0 = value TypePath; Child1 = index KindParameter;
//	                     Child2 = getter body KindBlock; Child3 = setter body
//	                              KindBlock (either may be invalid)
//	KindMethodDecl       Name; Child0 = generic-parameter list head;
//	                     Child1 = parameter list head; Child2 = return TypePath;
//	                     Child3 = body KindBlock (may be invalid for a
//	                              forward declaration)
//	KindConstructorDecl  Child0 = parameter list head; Child1 = body KindBlock
//	KindParameter        Name; Child0 = TypePath; Next-linked; Modifiers carries
//	                              ModRef/ModOut; HasDefaultValue marks "= expr"
//	KindTypePath         Name; Child0 = KindGenericArgumentList (or invalid);
//	                              BuiltIn/IsNullable/IsArray as documented on Node
//	KindGenericArgumentList
//	                     Child0 = head of argument TypePaths (Next-linked)
//	KindBlock            Child0 = head of statement list (Next-linked)
package pipeline
