// internal/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/atelier/locks" // 所有分布式锁的根节点
)

// ErrLockTimeout 表示在等待前序持有者释放锁时超时。
var ErrLockTimeout = errors.New("timeout waiting for lock")

// DistributedLock 基于 ZooKeeper 临时顺序节点实现的分布式锁。
// 用于对同一资源（如同一个购物车）的修改做串行化。
type DistributedLock struct {
	conn     *Conn
	path     string // 锁的路径，例如 /atelier/locks/cart-abc
	lockNode string // 成功获取锁后，自己创建的节点路径
	waitFor  time.Duration
}

// NewDistributedLock 创建一个新的分布式锁实例。
func NewDistributedLock(conn *Conn, resourceID string) *DistributedLock {
	ensurePath(conn, lockRoot)
	lockPath := lockRoot + "/" + resourceID
	ensurePath(conn, lockPath)

	return &DistributedLock{
		conn:    conn,
		path:    lockPath,
		waitFor: 30 * time.Second,
	}
}

func ensurePath(conn *Conn, path string) {
	// 持久节点，初始化一次即可；并发创建时忽略已存在错误
	if exists, _, err := conn.Exists(path); err == nil && exists {
		return
	}
	// 逐级创建，父路径可能也不存在
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	cur := ""
	for _, p := range parts {
		cur += "/" + p
		if _, err := conn.Create(cur, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
			panic(fmt.Sprintf("failed to create lock path node %s: %v", cur, err))
		}
	}
}

// Lock 尝试获取锁，获取不到则阻塞等待，最长等待 waitFor。
func (l *DistributedLock) Lock() error {
	// 1. 在锁路径下创建一个临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		// 2. 获取锁路径下的所有子节点并排序
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		// 3. 判断自己是否是最小的节点
		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			return nil
		}

		// 4. 不是最小节点，监听前一个节点
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			return errors.New("cannot find previous node, something is wrong")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		_, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			// 前一个节点在检查时刚好被删除，重新竞争
			if err == zk.ErrNoNode {
				continue
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(l.waitFor):
			// 放弃等待前清理自己的节点，避免把后来者也堵住
			_ = l.conn.Delete(l.lockNode, -1)
			l.lockNode = ""
			return ErrLockTimeout
		}
	}
}

// Unlock 释放锁。
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}
