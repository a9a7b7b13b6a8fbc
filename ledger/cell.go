package ledger

import (
	"fmt"

	"github.com/lunfardo314/easydex/lockscript"
	"github.com/lunfardo314/easydex/molecule"
)

type (
	// CellOutput is capacity with the lock which controls it and optional type of the asset
	CellOutput struct {
		Capacity uint64
		Lock     *lockscript.Script
		Type     *lockscript.Script
	}

	// Cell is a live cell: output with its data
	Cell struct {
		Output CellOutput
		Data   []byte
	}
)

func NewCellOutput(capacity uint64, lock *lockscript.Script) CellOutput {
	return CellOutput{
		Capacity: capacity,
		Lock:     lock,
	}
}

func (o CellOutput) WithType(typeScript *lockscript.Script) CellOutput {
	o.Type = typeScript
	return o
}

// Bytes serializes the output as table: capacity, lock, optional type
func (o *CellOutput) Bytes() []byte {
	var typeBin []byte
	if o.Type != nil {
		typeBin = o.Type.Bytes()
	}
	return molecule.PackTable(molecule.PackUint64(o.Capacity), o.Lock.Bytes(), typeBin)
}

func CellOutputFromBytes(data []byte) (*CellOutput, error) {
	fields, err := molecule.ParseTable(data, 3)
	if err != nil {
		return nil, fmt.Errorf("cell output: %w", err)
	}
	ret := &CellOutput{}
	if ret.Capacity, err = molecule.Uint64(fields[0]); err != nil {
		return nil, fmt.Errorf("cell capacity: %w", err)
	}
	if ret.Lock, err = lockscript.FromBytes(fields[1]); err != nil {
		return nil, fmt.Errorf("cell lock: %w", err)
	}
	if len(fields[2]) > 0 {
		if ret.Type, err = lockscript.FromBytes(fields[2]); err != nil {
			return nil, fmt.Errorf("cell type: %w", err)
		}
	}
	return ret, nil
}

func (c *Cell) Bytes() []byte {
	return molecule.PackTable(c.Output.Bytes(), molecule.PackBytes(c.Data))
}

func CellFromBytes(data []byte) (*Cell, error) {
	fields, err := molecule.ParseTable(data, 2)
	if err != nil {
		return nil, fmt.Errorf("cell: %w", err)
	}
	out, err := CellOutputFromBytes(fields[0])
	if err != nil {
		return nil, err
	}
	cellData, err := molecule.ParseBytes(fields[1])
	if err != nil {
		return nil, fmt.Errorf("cell data: %w", err)
	}
	return &Cell{Output: *out, Data: cellData}, nil
}

func (c *Cell) String() string {
	ret := fmt.Sprintf("cell(capacity: %d, lock: %s", c.Output.Capacity, c.Output.Lock)
	if c.Output.Type != nil {
		ret += fmt.Sprintf(", type: %s", c.Output.Type)
	}
	return ret + fmt.Sprintf(", data: %d bytes)", len(c.Data))
}
