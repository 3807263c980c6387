package drive

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/FoxDenHome/tapectl/hotplug"
	"github.com/FoxDenHome/tapectl/labels"
	"github.com/FoxDenHome/tapectl/notify"
	"github.com/FoxDenHome/tapectl/scsi"
	"github.com/FoxDenHome/tapectl/scsi/dispatch"
	"github.com/FoxDenHome/tapectl/tools"
)

// handle is the slice of scsi.Device the drive holds on to.
type handle interface {
	Path() string
	SubmitRead(cmd scsi.Command) (*scsi.Result, []byte, error)
	Close() error
	Invalidate()
}

type Opener func(path string) (handle, error)

func scsiOpener(path string) (handle, error) {
	return scsi.Open(path)
}

// TapeDrive ties one physical drive's SCSI path, vendor tools, label
// store and notification channel together. The SCSI handle is opened
// lazily and dropped whenever the presence monitor reports the device
// gone; it is never reused across a detach.
type TapeDrive struct {
	path       string
	mountPoint string

	exec     *dispatch.Executor
	tools    *tools.Tools
	store    *labels.Store
	notifier notify.Notifier
	opener   Opener

	mu  sync.Mutex
	dev handle
}

type Config struct {
	DevicePath string
	MountPoint string

	Executor *dispatch.Executor
	Tools    *tools.Tools
	Store    *labels.Store
	Notifier notify.Notifier

	// Opener overrides how the SCSI handle is opened; nil means the
	// real transport.
	Opener Opener
}

func New(cfg Config) *TapeDrive {
	opener := cfg.Opener
	if opener == nil {
		opener = scsiOpener
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	exec := cfg.Executor
	if exec == nil {
		exec = dispatch.New(dispatch.DefaultPolicy)
	}
	return &TapeDrive{
		path:       cfg.DevicePath,
		mountPoint: cfg.MountPoint,
		exec:       exec,
		tools:      cfg.Tools,
		store:      cfg.Store,
		notifier:   notifier,
		opener:     opener,
	}
}

func (d *TapeDrive) Path() string {
	return d.path
}

// HandleEvent is the drive's presence listener. A detach invalidates
// the cached handle so every in-flight or later submit fails with
// ErrDeviceUnavailable instead of touching a gone device.
func (d *TapeDrive) HandleEvent(ev hotplug.Event) {
	if ev.Device != d.path {
		return
	}

	switch ev.Type {
	case hotplug.Detached:
		d.mu.Lock()
		dev := d.dev
		d.dev = nil
		d.mu.Unlock()

		if dev != nil {
			dev.Invalidate()
			log.WithField("device", d.path).Warn("drive detached, handle invalidated")
		}
	case hotplug.Attached:
		log.WithField("device", d.path).Info("drive attached")
	}
}

func (d *TapeDrive) Close() error {
	d.mu.Lock()
	dev := d.dev
	d.dev = nil
	d.mu.Unlock()

	if dev == nil {
		return nil
	}
	return dev.Close()
}

func (d *TapeDrive) device() (handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dev != nil {
		return d.dev, nil
	}

	dev, err := d.opener(d.path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", d.path)
	}
	d.dev = dev
	return dev, nil
}

// Ready reports whether the drive has a loaded, ready medium.
func (d *TapeDrive) Ready(ctx context.Context) (bool, error) {
	dev, err := d.device()
	if err != nil {
		return false, err
	}

	res, err := d.exec.Run(ctx, dev, scsi.TestUnitReady())
	if err != nil {
		return false, err
	}
	return res.Ok(), nil
}

// Identify reads the drive's INQUIRY identity.
func (d *TapeDrive) Identify(ctx context.Context) (*scsi.InquiryData, error) {
	dev, err := d.device()
	if err != nil {
		return nil, err
	}

	res, data, err := d.exec.Execute(ctx, dev, scsi.Inquiry())
	if err != nil {
		return nil, err
	}
	if err := dispatch.ResultError(res); err != nil {
		return nil, err
	}
	return scsi.ParseInquiry(data), nil
}

// DriveSerial reads the drive unit's own serial from the VPD page, as
// opposed to the medium serial which lives in MAM.
func (d *TapeDrive) DriveSerial(ctx context.Context) (string, error) {
	dev, err := d.device()
	if err != nil {
		return "", err
	}

	res, data, err := d.exec.Execute(ctx, dev, scsi.InquiryVPD(scsi.VPD_PAGE_UNIT_SERIAL))
	if err != nil {
		return "", err
	}
	if err := dispatch.ResultError(res); err != nil {
		return "", err
	}
	return scsi.ParseUnitSerial(data), nil
}

// LoadMedium threads the medium; EjectMedium rewinds and unloads. Both
// go through the SCSI path, not the vendor tools, so they work with no
// filesystem mounted.
func (d *TapeDrive) LoadMedium(ctx context.Context) error {
	return d.loadUnload(ctx, scsi.LOAD_AND_THREAD)
}

func (d *TapeDrive) EjectMedium(ctx context.Context) error {
	return d.loadUnload(ctx, scsi.UNLOAD_ARCHIVE)
}

// Position reports the current medium position.
func (d *TapeDrive) Position(ctx context.Context) (*scsi.Position, error) {
	dev, err := d.device()
	if err != nil {
		return nil, err
	}

	res, data, err := d.exec.Execute(ctx, dev, scsi.ReadPosition())
	if err != nil {
		return nil, err
	}
	if err := dispatch.ResultError(res); err != nil {
		return nil, err
	}

	pos := scsi.ParsePosition(data)
	if pos == nil {
		return nil, errors.Errorf("short READ POSITION response (%d bytes)", len(data))
	}
	return pos, nil
}

// Seek positions the medium to a logical object within a partition.
func (d *TapeDrive) Seek(ctx context.Context, partition uint8, logicalObject uint64) error {
	dev, err := d.device()
	if err != nil {
		return err
	}

	res, err := d.exec.Run(ctx, dev, scsi.Locate(partition, logicalObject))
	if err != nil {
		return err
	}
	return dispatch.ResultError(res)
}

func (d *TapeDrive) loadUnload(ctx context.Context, op scsi.LoadUnloadOperation) error {
	dev, err := d.device()
	if err != nil {
		return err
	}

	res, err := d.exec.Run(ctx, dev, scsi.LoadUnload(op))
	if err != nil {
		return err
	}
	return dispatch.ResultError(res)
}
