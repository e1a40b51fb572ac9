// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

// Package i2cdev provides an i2c.Bus on the Linux i2c-dev character device.
package i2cdev

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/warthog618/adcboard/i2c"
	"golang.org/x/sys/unix"
)

// ioctls and constants from linux/i2c-dev.h and linux/i2c.h
const (
	ioctlSlave = 0x0703
	ioctlSMBus = 0x0720

	smbusRead     = 1
	smbusWordData = 3

	// sized to hold the largest SMBus block transfer
	smbusBlockMax = 32
)

// mirrors struct i2c_smbus_ioctl_data
type smbusIoctlData struct {
	readWrite uint8
	command   uint8
	size      uint32
	data      unsafe.Pointer
}

// Bus is an open i2c-dev device node.
type Bus struct {
	mu   sync.Mutex
	fd   int
	addr uint8
}

var _ i2c.Bus = (*Bus)(nil)

// ErrClosed indicates the Bus has already been closed.
var ErrClosed = errors.New("bus closed")

// Open opens the i2c-dev node, e.g. /dev/i2c-1.
func Open(node string) (*Bus, error) {
	fd, err := unix.Open(node, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &Bus{fd: fd}, nil
}

// Opener returns the Bus as an i2c.Bus, for use as an i2c.Opener.
func Opener(node string) (i2c.Bus, error) {
	b, err := Open(node)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Close closes the device node.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return ErrClosed
	}
	err := unix.Close(b.fd)
	b.fd = -1
	return err
}

// SetAddr selects the slave addressed by subsequent transactions.
func (b *Bus) SetAddr(addr uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return ErrClosed
	}
	if err := unix.IoctlSetInt(b.fd, ioctlSlave, int(addr)); err != nil {
		return err
	}
	b.addr = addr
	return nil
}

// Addr returns the currently selected slave address.
func (b *Bus) Addr() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addr
}

// ReadWord performs an SMBus read word data transaction.
func (b *Bus) ReadWord(cmd uint8) (uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return 0, ErrClosed
	}
	var data [smbusBlockMax + 2]byte
	args := smbusIoctlData{
		readWrite: smbusRead,
		command:   cmd,
		size:      smbusWordData,
		data:      unsafe.Pointer(&data[0]),
	}
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(b.fd),
		uintptr(ioctlSMBus),
		uintptr(unsafe.Pointer(&args)))
	if errno != 0 {
		return 0, errno
	}
	// the kernel returns the word in host order
	return *(*uint16)(unsafe.Pointer(&data[0])), nil
}
