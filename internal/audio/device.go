package audio

import (
	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog/log"

	"github.com/sjroesink/whisper/internal/errors"
)

// Device describes a capture device visible to the host.
type Device struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// Initialize prepares the platform audio subsystem. Callers must pair it
// with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return errors.DeviceErr("initialize audio subsystem: %v", err)
	}
	return nil
}

// Terminate releases the platform audio subsystem.
func Terminate() {
	if err := portaudio.Terminate(); err != nil {
		log.Warn().Err(err).Msg("terminate audio subsystem")
	}
}

// ListInputDevices enumerates capture devices, flagging the host default.
func ListInputDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, errors.DeviceErr("enumerate devices: %v", err)
	}
	def, _ := portaudio.DefaultInputDevice()

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info.MaxInputChannels <= 0 {
			continue
		}
		devices = append(devices, Device{
			Name:      info.Name,
			IsDefault: def != nil && info.Name == def.Name,
		})
	}
	return devices, nil
}

// findDevice resolves a capture device by name, falling back to the host
// default with a warning when the named device is absent.
func findDevice(name string) (*portaudio.DeviceInfo, error) {
	if name != "" {
		infos, err := portaudio.Devices()
		if err == nil {
			for _, info := range infos {
				if info.MaxInputChannels > 0 && info.Name == name {
					return info, nil
				}
			}
		}
		log.Warn().Str("device", name).Msg("input device not found, falling back to default")
	}

	def, err := portaudio.DefaultInputDevice()
	if err != nil || def == nil {
		return nil, errors.DeviceErr("no input device found")
	}
	return def, nil
}
