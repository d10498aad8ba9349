package engine

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Chunk is a loaded unit of execution: a flat list of stack instructions
// produced by the assembler or by Undump.
type Chunk struct {
	Name string  `cbor:"1,keyasint"`
	Code []Instr `cbor:"2,keyasint"`
}

// Opcodes of the chunk instruction set. One instruction per source line.
type Opcode uint8

const (
	OpNil    Opcode = iota // push nil
	OpTrue                 // push true
	OpFalse                // push false
	OpNumber               // push Num
	OpString               // push Str
	OpGlobal               // push the global named Str
	OpCall                 // call with A args, B results (-1 for all)
	OpPop                  // pop A slots
	OpReturn               // return top A slots
)

// Instr is one chunk instruction. Operand fields are used per opcode.
type Instr struct {
	Op  Opcode  `cbor:"1,keyasint"`
	Num float64 `cbor:"2,keyasint,omitempty"`
	Str string  `cbor:"3,keyasint,omitempty"`
	A   int     `cbor:"4,keyasint,omitempty"`
	B   int     `cbor:"5,keyasint,omitempty"`
}

// SyntaxError describes an assembly failure with its source position.
type SyntaxError struct {
	Chunk string
	Line  int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Chunk, e.Line, e.Msg)
}

// assemble parses the textual chunk format: one instruction per line,
// blank lines and lines starting with ';' ignored.
//
//	nil | true | false
//	num <float>
//	str <quoted string>
//	global <name>
//	call <nargs> <nresults>
//	pop <n>
//	return <n>
func assemble(src, name string) (*Chunk, error) {
	c := &Chunk{Name: name}
	for i, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		op, rest := fields[0], ""
		if len(fields) == 2 {
			rest = strings.TrimSpace(fields[1])
		}
		in, err := assembleOne(op, rest)
		if err != nil {
			return nil, &SyntaxError{Chunk: name, Line: i + 1, Msg: err.Error()}
		}
		c.Code = append(c.Code, in)
	}
	return c, nil
}

func assembleOne(op, rest string) (Instr, error) {
	switch op {
	case "nil":
		return Instr{Op: OpNil}, nil
	case "true":
		return Instr{Op: OpTrue}, nil
	case "false":
		return Instr{Op: OpFalse}, nil
	case "num":
		f, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return Instr{}, fmt.Errorf("malformed number near '%s'", rest)
		}
		return Instr{Op: OpNumber, Num: f}, nil
	case "str":
		s, err := strconv.Unquote(rest)
		if err != nil {
			return Instr{}, fmt.Errorf("malformed string near '%s'", rest)
		}
		return Instr{Op: OpString, Str: s}, nil
	case "global":
		if rest == "" {
			return Instr{}, fmt.Errorf("'global' expects a name")
		}
		return Instr{Op: OpGlobal, Str: rest}, nil
	case "call":
		var a, b int
		if _, err := fmt.Sscanf(rest, "%d %d", &a, &b); err != nil {
			return Instr{}, fmt.Errorf("'call' expects <nargs> <nresults>")
		}
		return Instr{Op: OpCall, A: a, B: b}, nil
	case "pop":
		a, err := strconv.Atoi(rest)
		if err != nil {
			return Instr{}, fmt.Errorf("'pop' expects a count")
		}
		return Instr{Op: OpPop, A: a}, nil
	case "return":
		a, err := strconv.Atoi(rest)
		if err != nil {
			return Instr{}, fmt.Errorf("'return' expects a count")
		}
		return Instr{Op: OpReturn, A: a}, nil
	}
	return Instr{}, fmt.Errorf("unknown instruction '%s'", op)
}

// execChunk runs a chunk body inside an already-pushed frame and returns
// its result count, mirroring the native calling convention.
func (l *State) execChunk(c *Chunk) int {
	for i := range c.Code {
		in := &c.Code[i]
		switch in.Op {
		case OpNil:
			l.PushNil()
		case OpTrue:
			l.PushBoolean(true)
		case OpFalse:
			l.PushBoolean(false)
		case OpNumber:
			l.PushNumber(in.Num)
		case OpString:
			l.PushString(in.Str)
		case OpGlobal:
			l.Global(in.Str)
		case OpCall:
			l.Call(in.A, in.B)
		case OpPop:
			l.Pop(in.A)
		case OpReturn:
			return in.A
		}
	}
	return 0
}

// Load reads a chunk from r and, on success, pushes it as a function.
// Binary input (recognized by the dump signature) goes through Undump,
// anything else through the assembler. On failure the error message is
// pushed and the distinguishing status returned.
func (l *State) Load(r io.Reader, name string) Status {
	data, err := io.ReadAll(r)
	if err != nil {
		l.PushString(fmt.Sprintf("%s: %s", name, err))
		return StatusFileError
	}
	var c *Chunk
	if isDump(data) {
		c, err = Undump(data)
	} else {
		c, err = assemble(string(data), name)
	}
	if err != nil {
		l.PushString(err.Error())
		return StatusSyntaxError
	}
	l.push(&function{name: name, chunk: c})
	return StatusOK
}

// LoadString loads a chunk from source text under the given name.
func (l *State) LoadString(src, name string) Status {
	return l.Load(strings.NewReader(src), name)
}

// LoadFile loads a chunk from a file. An open or read failure yields
// StatusFileError with the OS message pushed.
func (l *State) LoadFile(path string) Status {
	f, err := os.Open(path)
	if err != nil {
		l.PushString(fmt.Sprintf("cannot open %s: %s", path, err))
		return StatusFileError
	}
	defer f.Close()
	return l.Load(f, path)
}
