// Package transfer implements a compiler and virtual machine for the
// rule-based transfer stage of a machine-translation pipeline: matching
// sequences of analyzed words against a pattern trie and rewriting them
// with a small stack-based bytecode language.
//
// The three transfer stages share most of the machinery:
//
//	transfer     bilingual words  -> chunks (or lexical units)
//	interchunk   chunks           -> chunks
//	postchunk    chunks           -> surface lexical units
//
// A minimal run looks like:
//
//	vm := transfer.NewVM(out)
//	if err := vm.Run(context.Background(), codeReader, in); err != nil {
//	    panic(err)
//	}
package transfer
