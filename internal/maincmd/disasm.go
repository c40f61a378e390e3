package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"gopkg.in/yaml.v3"

	"github.com/mna/vela/lang/chunk"
	"github.com/mna/vela/lang/compiler"
	"github.com/mna/vela/lang/machine"
)

// Disasm compiles each file without running it and prints a disassembly
// listing of every function it contains, in --format text (default) or
// --format yaml.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	format := c.Format
	if format == "" {
		format = "text"
	}
	return DisasmFiles(stdio, format, args...)
}

// DisasmFiles compiles each file and writes its disassembly to stdio.Stdout.
func DisasmFiles(stdio mainer.Stdio, format string, files ...string) error {
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}

		mem := machine.NewMemory()
		if _, err := compiler.Compile(string(src), mem, stdio.Stderr, nil); err != nil {
			return err
		}

		switch format {
		case "yaml":
			if err := writeYAMLDump(stdio, mem); err != nil {
				return err
			}
		default:
			for i := 0; i < mem.NumFunctions(); i++ {
				fn := mem.FunctionAt(i)
				name := "<script>"
				if fn.Name != nil {
					name = fn.Name.String()
				}
				chunk.Disassemble(stdio.Stdout, &fn.Chunk, name)
			}
		}
	}
	return nil
}

// yamlFunction is the structured form of a compiled function written out by
// --format yaml: a non-textual alternative to the human disassembly, aimed
// at tooling that wants to consume compiled chunks programmatically.
type yamlFunction struct {
	Name      string   `yaml:"name"`
	Arity     int      `yaml:"arity"`
	Code      []int    `yaml:"code"`
	Lines     []int    `yaml:"lines"`
	Constants []string `yaml:"constants"`
}

func writeYAMLDump(stdio mainer.Stdio, mem *machine.Memory) error {
	fns := make([]yamlFunction, 0, mem.NumFunctions())
	for i := 0; i < mem.NumFunctions(); i++ {
		fn := mem.FunctionAt(i)
		name := "<script>"
		if fn.Name != nil {
			name = fn.Name.String()
		}
		code := make([]int, len(fn.Chunk.Code))
		for j, b := range fn.Chunk.Code {
			code[j] = int(b)
		}
		consts := make([]string, len(fn.Chunk.Constants))
		for j, v := range fn.Chunk.Constants {
			consts[j] = v.String()
		}
		fns = append(fns, yamlFunction{
			Name:      name,
			Arity:     fn.Arity,
			Code:      code,
			Lines:     fn.Chunk.Lines,
			Constants: consts,
		})
	}

	enc := yaml.NewEncoder(stdio.Stdout)
	defer enc.Close()
	return enc.Encode(fns)
}
