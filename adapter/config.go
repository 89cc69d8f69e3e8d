package adapter

import (
	"fmt"

	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/module"
)

// CtrlCmd is the configuration command carried by a control message.
type CtrlCmd int

const (
	// CmdSetData transfers a configuration blob to the module.
	CmdSetData CtrlCmd = iota
	// CmdGetData reads a configuration blob from the module.
	CmdGetData
	// CmdSetValue sets a simple control value.
	CmdSetValue
	// CmdGetValue reads a simple control value.
	CmdGetValue
)

// CtrlType is the control sub-command.
type CtrlType int

const (
	// CtrlEnum is not supported for data transfers.
	CtrlEnum CtrlType = iota
	// CtrlBinary transfers an opaque binary blob in fragments.
	CtrlBinary
)

// ABIVersion packs a major.minor.patch configuration ABI version the way
// the wire header carries it.
type ABIVersion uint32

// NewABIVersion packs the three version components.
func NewABIVersion(major, minor, patch int) ABIVersion {
	return ABIVersion(major&0xff)<<24 | ABIVersion(minor&0xfff)<<12 | ABIVersion(patch&0xfff)
}

// Major returns the major component.
func (v ABIVersion) Major() int { return int(v >> 24 & 0xff) }

// Minor returns the minor component.
func (v ABIVersion) Minor() int { return int(v >> 12 & 0xfff) }

// CurrentABI is the configuration ABI this build speaks.
var CurrentABI = NewABIVersion(3, 23, 0)

// Compatible reports whether a header version falls inside the
// compatibility window: same major, not newer than ours.
func (v ABIVersion) Compatible(header ABIVersion) bool {
	if v.Major() != header.Major() {
		return false
	}
	return header.Minor() <= v.Minor()
}

// CtrlData is one fragment of a configuration transfer. NumElems counts the
// bytes carried by this fragment, ElemsRemaining the bytes still to come and
// MsgIndex the zero-based fragment index within the logical transfer.
type CtrlData struct {
	Type           CtrlType
	ABI            ABIVersion
	BlobType       uint32
	NumElems       uint32
	ElemsRemaining uint32
	MsgIndex       uint32
	Data           []byte
}

// Cmd passes a standard or bespoke control command to the module. A module
// without the configuration capability yields a non-fatal no-op.
func (a *Adapter) Cmd(cmd CtrlCmd, cdata *CtrlData) error {
	a.log.Debugf("cmd %d start", cmd)

	if cdata == nil {
		return fmt.Errorf("%w: nil control data", comp.ErrInvalidConfig)
	}

	switch cmd {
	case CmdSetData:
		return a.ctrlGetSetData(cdata, true)
	case CmdGetData:
		return a.ctrlGetSetData(cdata, false)
	case CmdSetValue:
		if cfg, ok := a.mod.(module.Configurable); ok {
			return cfg.SetConfiguration(0, module.FragmentSingle, 0, cdata.Data)
		}
		a.log.Warn("cmd: no configuration op set")
		return nil
	case CmdGetValue:
		if cfg, ok := a.mod.(module.Configurable); ok {
			var size uint32
			_, err := cfg.GetConfiguration(module.FragmentSingle, &size, cdata.Data)
			return err
		}
		a.log.Warn("cmd: no configuration op set")
		return nil
	}
	return fmt.Errorf("%w: unknown control command %d", comp.ErrInvalidConfig, cmd)
}

func (a *Adapter) ctrlGetSetData(cdata *CtrlData, set bool) error {
	if !CurrentABI.Compatible(cdata.ABI) {
		return fmt.Errorf("%w: abi mismatch, header %08x current %08x",
			comp.ErrInvalidConfig, uint32(cdata.ABI), uint32(CurrentABI))
	}

	switch cdata.Type {
	case CtrlEnum:
		return fmt.Errorf("%w: enum data transfer", comp.ErrNotSupported)
	case CtrlBinary:
		return a.getSetConfig(cdata, set)
	}
	return fmt.Errorf("%w: unknown data command %d", comp.ErrInvalidConfig, cdata.Type)
}

// getSetConfig reconstructs the position of one fragment within the logical
// blob. The first fragment establishes the total size; later fragments
// derive their byte offset from the bytes still outstanding. The running
// total is per-instance state so concurrently configured instances never
// interleave.
func (a *Adapter) getSetConfig(cdata *CtrlData, set bool) error {
	a.log.Debugf("config: num_elems %d, elems remaining %d, msg index %d",
		cdata.NumElems, cdata.ElemsRemaining, cdata.MsgIndex)

	var pos module.FragmentPosition
	var offset uint32
	if cdata.MsgIndex == 0 {
		a.cfgTotal = cdata.NumElems + cdata.ElemsRemaining
		offset = a.cfgTotal
		if cdata.ElemsRemaining > 0 {
			pos = module.FragmentFirst
		} else {
			pos = module.FragmentSingle
		}
	} else {
		offset = a.cfgTotal - (cdata.NumElems + cdata.ElemsRemaining)
		if cdata.ElemsRemaining > 0 {
			pos = module.FragmentMiddle
		} else {
			pos = module.FragmentLast
		}
	}

	cfg, ok := a.mod.(module.Configurable)
	if !ok {
		a.log.Warn("config: no configuration op set")
		return nil
	}
	if set {
		n := int(cdata.NumElems)
		if n > len(cdata.Data) {
			n = len(cdata.Data)
		}
		return cfg.SetConfiguration(cdata.BlobType, pos, offset, cdata.Data[:n])
	}
	n, err := cfg.GetConfiguration(pos, &offset, cdata.Data)
	if err != nil {
		return err
	}
	cdata.NumElems = uint32(n)
	return nil
}
