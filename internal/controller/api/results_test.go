package api

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	infrds "loto-server/internal/infra/redis"

	beegocontext "github.com/beego/beego/v2/server/web/context"
)

// GetDraw 必须透传请求级 context：客户端已断开时，对 Redis 的调用应立即失败返回，
// 而不是拿着 Background context 一直等到读超时。
func TestGetDrawHonorsRequestContext(t *testing.T) {
	// 只收连接不回包的假 Redis，任何命令都会挂起
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	var conns []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()
	defer func() {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}()

	infrds.Init(ln.Addr().String(), "", 0)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/results/9", nil)
	reqCtx, cancel := context.WithCancel(r.Context())
	cancel() // 模拟客户端断开
	r = r.WithContext(reqCtx)

	bctx := beegocontext.NewContext()
	bctx.Reset(w, r)
	bctx.Input.SetParam(":draw_result_id", "9")

	ctrl := &ResultsController{}
	ctrl.Init(bctx, "ResultsController", "GetDraw", nil)

	start := time.Now()
	func() {
		// CustomAbort 以 panic 结束 handler
		defer func() { _ = recover() }()
		ctrl.GetDraw()
	}()

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("handler blocked %v despite canceled request context", elapsed)
	}
	if w.Code != 503 {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
