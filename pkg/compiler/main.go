// Package compiler is a front end for a C23 subset: it lexes and parses
// preprocessed source into a typed AST, resolves types and scopes as it
// goes, and lowers the result to the triple IR of package ir.
//
// Pipeline: C source → Lexer → Parser (SymbolTable, Resolver) → Lower → ir.Program
package compiler
