package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Editor Page
// ============================================================

// EditorPage отдаёт одностраничный редактор. Страница только пересылает
// события указателя в API и подставляет пересобранную сцену.
func EditorPage(c fiber.Ctx) error {
	c.Type("html")
	return c.SendString(editorPage)
}

const editorPage = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>Room Editor</title>
  <style>
    body { margin: 0; font: 13px sans-serif; display: flex; flex-direction: column; height: 100vh; }
    header, footer { padding: 8px 16px; border-bottom: 1px solid #e5e7eb; display: flex; gap: 12px; align-items: center; }
    footer { border-top: 1px solid #e5e7eb; border-bottom: none; background: #f9fafb; color: #4b5563; }
    main { flex: 1; display: flex; min-height: 0; }
    aside { width: 220px; padding: 12px; background: #f9fafb; border-right: 1px solid #e5e7eb; }
    #panel { width: 260px; border-left: 1px solid #e5e7eb; border-right: none; background: #fff; }
    #canvas { flex: 1; position: relative; overflow: hidden; background: #f9fafb; }
    button.active { background: #1f2937; color: #fff; }
    aside button { display: block; width: 100%; margin-bottom: 4px; }
    #error { color: #dc2626; }
  </style>
</head>
<body>
<header>
  <strong>ROOM EDITOR</strong>
  <span style="flex:1"></span>
  <button data-inert="save">Save</button>
  <button data-inert="share">Share</button>
</header>
<main>
  <aside>
    <h4>Tools</h4>
    <div id="tools">
      <button data-tool="select">Select</button>
      <button data-tool="wall">Wall</button>
      <button data-tool="door">Door</button>
      <button data-tool="room">Room</button>
      <button data-tool="corridor">Corridor</button>
    </div>
    <h4>Layers</h4>
    <label><input type="checkbox" data-layer="walls" checked> Walls</label><br>
    <label><input type="checkbox" data-layer="doors" checked> Doors</label><br>
    <label><input type="checkbox" data-layer="rooms" checked> Rooms</label>
    <h4>View</h4>
    <input id="zoom" type="range" min="10" max="500" value="100">
    <button id="reset">Reset view</button>
    <button id="delete">Delete selected</button>
    <button id="history">History</button>
    <ol id="entries"></ol>
  </aside>
  <div id="canvas"></div>
  <aside id="panel"><p>Select a room on the plan to see its details</p></aside>
</main>
<footer>
  <span id="status"></span>
  <span style="flex:1"></span>
  <span id="error"></span>
</footer>
<dialog id="edit">
  <form method="dialog">
    <label>Name <input id="edit-name"></label><br>
    <label>Color <input id="edit-color" type="color"></label><br>
    <button value="cancel">Cancel</button>
    <button id="edit-confirm" value="ok">Save</button>
  </form>
</dialog>
<script>
  const base = '/api/v1/sessions';
  const canvas = document.getElementById('canvas');
  let sid = null;

  // все запросы уходят по одному, в порядке событий
  let queue = Promise.resolve();
  function call(method, path, body) {
    const next = queue.then(() => request(method, path, body));
    queue = next.catch(() => null);
    return next;
  }

  async function request(method, path, body) {
    const res = await fetch(base + '/' + sid + path, {
      method,
      headers: { 'Content-Type': 'application/json' },
      body: body ? JSON.stringify(body) : undefined,
    });
    const data = await res.json().catch(() => null);
    document.getElementById('error').textContent = res.ok ? '' : ((data && data.error) || res.statusText);
    return res.ok ? data : null;
  }

  async function redraw(data) {
    if (!data) return;
    const svg = await fetch(base + '/' + sid + '/scene.svg').then(r => r.text());
    canvas.innerHTML = svg.replace(/^<\?xml[^>]*>\s*/, '');
    show(data);
  }

  function show(data) {
    document.getElementById('status').textContent = data.statusLine;
    document.querySelectorAll('[data-tool]').forEach(b => b.classList.toggle('active', b.dataset.tool === data.state.tool));
    document.getElementById('zoom').value = Math.round(data.state.viewport.zoom * 100);
    const p = data.properties;
    document.getElementById('panel').innerHTML = p
      ? '<h3></h3><p>Type: ' + p.type + '</p><p>Area: ' + p.area + ' m²</p>' +
        '<p>Width: ' + p.widthM.toFixed(1) + ' m</p><p>Length: ' + p.lengthM.toFixed(1) + ' m</p>' +
        '<button id="open-edit">Edit properties</button>'
      : '<p>Select a room on the plan to see its details</p>';
    if (p) {
      document.querySelector('#panel h3').textContent = p.name;
      document.getElementById('open-edit').onclick = openEdit;
    }
  }

  function pos(e) {
    const r = canvas.getBoundingClientRect();
    return { x: e.clientX - r.left, y: e.clientY - r.top };
  }

  // смещения, накопленные пока предыдущий move в пути
  let pendingDelta = { dx: 0, dy: 0 };
  let lastPos = null;
  let moveInFlight = false;
  let moveDirty = false;

  function takeMove() {
    const body = { x: lastPos.x, y: lastPos.y, dx: pendingDelta.dx, dy: pendingDelta.dy };
    pendingDelta = { dx: 0, dy: 0 };
    moveDirty = false;
    return body;
  }

  function flushMove() {
    moveInFlight = true;
    call('POST', '/pointer/move', takeMove()).then(data => {
      moveInFlight = false;
      if (moveDirty) flushMove();
      if (data && data.state.mode !== 'idle') redraw(data); else if (data) show(data);
    });
  }

  canvas.addEventListener('mousedown', e => {
    if (e.button === 1) e.preventDefault();
    const p = pos(e);
    lastPos = p;
    call('POST', '/pointer/down', { x: p.x, y: p.y, button: e.button }).then(redraw);
  });
  canvas.addEventListener('mousemove', e => {
    pendingDelta.dx += e.movementX;
    pendingDelta.dy += e.movementY;
    lastPos = pos(e);
    moveDirty = true;
    if (!moveInFlight) flushMove();
  });
  canvas.addEventListener('mouseup', e => {
    const p = pos(e);
    lastPos = p;
    if (pendingDelta.dx || pendingDelta.dy) call('POST', '/pointer/move', takeMove());
    call('POST', '/pointer/up', { x: p.x, y: p.y, button: e.button }).then(redraw);
  });
  canvas.addEventListener('wheel', e => {
    e.preventDefault();
    call('POST', '/wheel', { deltaY: e.deltaY }).then(redraw);
  }, { passive: false });
  canvas.addEventListener('click', e => {
    const el = e.target.closest('[data-kind]');
    if (el) {
      e.stopPropagation();
      call('POST', '/select', { kind: el.dataset.kind, id: el.dataset.id }).then(redraw);
      return;
    }
    call('POST', '/selection/clear').then(redraw);
  });

  document.querySelectorAll('[data-tool]').forEach(b =>
    b.onclick = () => call('POST', '/tool', { tool: b.dataset.tool }).then(redraw));
  document.querySelectorAll('[data-layer]').forEach(i =>
    i.onchange = () => call('POST', '/layers/' + i.dataset.layer + '/toggle').then(redraw));
  document.querySelectorAll('[data-inert]').forEach(b =>
    b.onclick = () => call('POST', '/' + b.dataset.inert));
  document.getElementById('zoom').oninput = e =>
    call('POST', '/zoom', { zoom: e.target.value / 100 }).then(redraw);
  document.getElementById('reset').onclick = () => call('POST', '/view/reset').then(redraw);
  document.getElementById('delete').onclick = () => call('DELETE', '/selection').then(redraw);
  document.addEventListener('keydown', e => {
    if (e.key === 'Delete' && e.target === document.body) call('DELETE', '/selection').then(redraw);
  });
  document.getElementById('history').onclick = async () => {
    const data = await call('GET', '/history?limit=20');
    const list = document.getElementById('entries');
    list.innerHTML = '';
    (data ? data.entries : []).forEach(en => {
      const li = document.createElement('li');
      li.textContent = en.op + ' ' + (en.detail || '');
      list.appendChild(li);
    });
  };

  async function openEdit() {
    const form = await call('GET', '/room/edit');
    if (!form) return;
    document.getElementById('edit-name').value = form.name;
    document.getElementById('edit-color').value = form.color;
    document.getElementById('edit').showModal();
  }
  document.getElementById('edit-confirm').onclick = () => {
    call('POST', '/room/edit', {
      name: document.getElementById('edit-name').value,
      color: document.getElementById('edit-color').value,
    }).then(redraw);
  };

  fetch(base, { method: 'POST' }).then(r => r.json()).then(data => {
    sid = data.session;
    redraw(data);
  });
</script>
</body>
</html>`
