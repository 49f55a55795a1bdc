package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders n back to source text. It is the inverse of the reader
// modulo position metadata (spec §8: "Reader → printer → reader yields
// the same SExp tree modulo positions") and modulo the read-time sugar
// rewrites (vector/hash-map head symbols print as the original `[...]`/
// `{...}` forms they were synthesized from).
func Print(n Node) string {
	var b strings.Builder
	print1(&b, n)
	return b.String()
}

func print1(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Symbol:
		b.WriteString(v.Name)
	case *Literal:
		printLiteral(b, v)
	case *List:
		printList(b, v)
	default:
		fmt.Fprintf(b, "#<unknown %T>", n)
	}
}

func printLiteral(b *strings.Builder, l *Literal) {
	switch l.Kind {
	case LitNull:
		b.WriteString("null")
	case LitBool:
		if l.Value.(bool) {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case LitInt:
		b.WriteString(strconv.FormatInt(l.Value.(int64), 10))
	case LitFloat:
		b.WriteString(strconv.FormatFloat(l.Value.(float64), 'g', -1, 64))
	case LitString:
		b.WriteString(strconv.Quote(l.Value.(string)))
	}
}

func printList(b *strings.Builder, l *List) {
	switch l.Head() {
	case "vector":
		b.WriteByte('[')
		printElements(b, l.Tail(), " ")
		b.WriteByte(']')
		return
	case "hash-map":
		b.WriteByte('{')
		printElements(b, l.Tail(), " ")
		b.WriteByte('}')
		return
	case "quote":
		if len(l.Elements) == 2 {
			b.WriteByte('\'')
			print1(b, l.Elements[1])
			return
		}
	case "quasiquote":
		if len(l.Elements) == 2 {
			b.WriteByte('`')
			print1(b, l.Elements[1])
			return
		}
	case "unquote":
		if len(l.Elements) == 2 {
			b.WriteByte('~')
			print1(b, l.Elements[1])
			return
		}
	case "unquote-splicing":
		if len(l.Elements) == 2 {
			b.WriteString("~@")
			print1(b, l.Elements[1])
			return
		}
	}
	b.WriteByte('(')
	printElements(b, l.Elements, " ")
	b.WriteByte(')')
}

func printElements(b *strings.Builder, elements []Node, sep string) {
	for i, e := range elements {
		if i > 0 {
			b.WriteString(sep)
		}
		print1(b, e)
	}
}
